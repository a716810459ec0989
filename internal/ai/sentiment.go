package ai

import (
	"context"
	"log/slog"

	"github.com/bookreview/bookreview-server/internal/domain"
)

const (
	sentimentSystem = "You are a sentiment analyzer. Analyze the sentiment of book reviews and return only 'positive', 'negative', or 'neutral'."
	sentimentPrompt = "Analyze the sentiment of this book review and respond with only one word: positive, negative, or neutral: "
)

// SentimentClassifier labels review bodies.
type SentimentClassifier struct {
	client ChatClient
	logger *slog.Logger
}

// NewSentimentClassifier creates a classifier backed by client.
func NewSentimentClassifier(client ChatClient, logger *slog.Logger) *SentimentClassifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SentimentClassifier{client: client, logger: logger}
}

// Classify returns the sentiment of text. It never fails: any error or an
// unrecognised reply yields neutral.
func (c *SentimentClassifier) Classify(ctx context.Context, text string) domain.Sentiment {
	reply, err := c.client.Complete(ctx, ChatRequest{
		Operation: OperationSentiment,
		System:    sentimentSystem,
		Prompt:    sentimentPrompt + text,
	})
	if err != nil {
		c.logger.Warn("sentiment analysis failed, defaulting to neutral", "error", err)
		return domain.SentimentNeutral
	}
	return domain.ParseSentiment(reply)
}
