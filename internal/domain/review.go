package domain

import (
	"strings"
	"time"
)

// Sentiment is the classifier's label for a review body.
type Sentiment string

// The three sentiment labels. Anything the classifier cannot map lands on neutral.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Sentiments lists the valid labels in display order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

// ParseSentiment normalises a model reply into a label.
// Surrounding whitespace and case are ignored. Any other reply, including one
// with punctuation or quotes, is neutral.
func ParseSentiment(reply string) Sentiment {
	s := strings.ToLower(strings.TrimSpace(reply))

	switch Sentiment(s) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return Sentiment(s)
	default:
		return SentimentNeutral
	}
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is within 1..5.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Review is one user's rating and text for one book. A user reviews a book at most once.
// Sentiment is nil until classified; UpdatedAt is nil until the first edit.
type Review struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	UserID     string     `json:"user_id"`
	Rating     int        `json:"rating"`
	ReviewText string     `json:"review_text"`
	Sentiment  *Sentiment `json:"sentiment"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// IsOwnedBy reports whether userID wrote the review.
func (r *Review) IsOwnedBy(userID string) bool {
	return r.UserID == userID
}

// SentimentOrNeutral returns the stored label, treating unclassified reviews as neutral.
func (r *Review) SentimentOrNeutral() Sentiment {
	if r.Sentiment == nil {
		return SentimentNeutral
	}
	return *r.Sentiment
}
