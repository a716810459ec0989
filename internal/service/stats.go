package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/store"
)

// StatsService reports per-book review statistics.
type StatsService struct {
	store store.Store
}

// NewStatsService creates a new stats service.
func NewStatsService(store store.Store) *StatsService {
	return &StatsService{store: store}
}

// BookStats returns the rating and sentiment distribution of a book's reviews.
// Unclassified reviews count as neutral.
func (s *StatsService) BookStats(ctx context.Context, bookID string) (*domain.BookStats, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	reviews, err := s.store.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return domain.ComputeBookStats(bookID, reviews), nil
}
