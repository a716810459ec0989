package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/metrics"
	"github.com/bookreview/bookreview-server/internal/store"
)

// RatingAggregator keeps each book's average rating and review count in step
// with its reviews. It is the only writer of those fields.
type RatingAggregator struct {
	store   store.Store
	indexer BookIndexer
	logger  *slog.Logger
}

// NewRatingAggregator creates an aggregator. indexer may be nil.
func NewRatingAggregator(store store.Store, indexer BookIndexer, logger *slog.Logger) *RatingAggregator {
	return &RatingAggregator{store: store, indexer: indexer, logger: logger}
}

// Recompute recalculates the aggregate from the book's current reviews and
// persists it. A book without reviews gets 0.0 / 0.
func (a *RatingAggregator) Recompute(ctx context.Context, bookID string) (*domain.RatingSummary, error) {
	reviews, err := a.store.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	summary := domain.SummarizeReviews(reviews)

	book, err := a.store.SetBookRating(ctx, bookID, summary)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrBookNotFound
		}
		return nil, fmt.Errorf("set book rating: %w", err)
	}

	metrics.RecordRatingRecompute()
	a.logger.Debug("book rating recomputed",
		"book_id", bookID,
		"average_rating", summary.AverageRating,
		"total_reviews", summary.TotalReviews,
	)

	indexQuietly(ctx, a.indexer, a.logger, book)

	return &summary, nil
}
