package domain

import "strconv"

// BookStats describes the rating and sentiment breakdown of a book's reviews.
type BookStats struct {
	BookID                string            `json:"book_id"`
	TotalReviews          int               `json:"total_reviews"`
	AverageRating         float64           `json:"average_rating"`
	RatingDistribution    map[string]int    `json:"rating_distribution"`
	SentimentDistribution map[Sentiment]int `json:"sentiment_distribution"`
}

// ComputeBookStats builds the stats for a book from its reviews.
// Every rating 1..5 and every sentiment label is present in the maps, zero when unused.
func ComputeBookStats(bookID string, reviews []*Review) *BookStats {
	stats := &BookStats{
		BookID:                bookID,
		RatingDistribution:    make(map[string]int, MaxRating),
		SentimentDistribution: make(map[Sentiment]int, len(Sentiments)),
	}
	for r := MinRating; r <= MaxRating; r++ {
		stats.RatingDistribution[strconv.Itoa(r)] = 0
	}
	for _, s := range Sentiments {
		stats.SentimentDistribution[s] = 0
	}

	summary := SummarizeReviews(reviews)
	stats.TotalReviews = summary.TotalReviews
	stats.AverageRating = summary.AverageRating

	for _, r := range reviews {
		if ValidRating(r.Rating) {
			stats.RatingDistribution[strconv.Itoa(r.Rating)]++
		}
		stats.SentimentDistribution[r.SentimentOrNeutral()]++
	}
	return stats
}
