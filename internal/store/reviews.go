package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookreview/bookreview-server/internal/domain"
)

// CreateReview stores a review. The book must exist and the (book, user) pair must be new;
// otherwise ErrBookNotFound or ErrReviewExists is returned.
func (s *BadgerStore) CreateReview(ctx context.Context, review *domain.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.update(func(txn *badger.Txn) error {
		if _, err := s.books.getTxn(txn, review.BookID); err != nil {
			return err
		}
		return s.reviews.createTxn(txn, review.ID, review)
	})
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrBookNotFound
	case errors.Is(err, ErrAlreadyExists):
		return ErrReviewExists
	case err != nil:
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// GetReview retrieves a review by ID.
func (s *BadgerStore) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.reviews.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	return review, err
}

// GetReviewByBookAndUser returns the user's review of a book.
func (s *BadgerStore) GetReviewByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	review, err := s.reviews.GetByIndex(ctx, indexBookUser, bookUserKey(bookID, userID))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	return review, err
}

// UpdateReview writes the rating, text, sentiment and edit time of an existing review.
func (s *BadgerStore) UpdateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.reviews.Mutate(ctx, review.ID, func(stored *domain.Review) error {
		stored.Rating = review.Rating
		stored.ReviewText = review.ReviewText
		stored.Sentiment = review.Sentiment
		stored.UpdatedAt = review.UpdatedAt
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrReviewNotFound
	}
	return err
}

// DeleteReview removes a review. Deleting a missing review is not an error.
func (s *BadgerStore) DeleteReview(ctx context.Context, id string) error {
	return s.reviews.Delete(ctx, id)
}

// ListReviewsByBook returns a book's reviews, newest first.
func (s *BadgerStore) ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	reviews, err := s.reviews.ListByIndex(ctx, indexBook, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for book: %w", err)
	}
	slices.SortFunc(reviews, newestFirst)
	return reviews, nil
}

// ListReviewsByUser returns the user's reviews, newest first, capped at limit when positive.
func (s *BadgerStore) ListReviewsByUser(ctx context.Context, userID string, limit int) ([]*domain.Review, error) {
	reviews, err := s.reviews.ListByIndex(ctx, indexUser, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for user: %w", err)
	}
	slices.SortFunc(reviews, newestFirst)
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return reviews, nil
}
