package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/id"
	"github.com/bookreview/bookreview-server/internal/metrics"
	"github.com/bookreview/bookreview-server/internal/store"
	"github.com/bookreview/bookreview-server/internal/validation"
)

const (
	msgReviewNotFound     = "Review not found"
	msgReviewExists       = "You have already reviewed this book"
	msgReviewEditDenied   = "You can only edit your own reviews"
	msgReviewDeleteDenied = "You can only delete your own reviews"
	msgReviewDeleted      = "Review deleted successfully"
)

// SentimentClassifier labels review text. Implementations never fail.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) domain.Sentiment
}

// ReviewService manages reviews and keeps book aggregates current.
type ReviewService struct {
	store      store.Store
	classifier SentimentClassifier
	aggregator *RatingAggregator
	validator  *validation.Validator
	logger     *slog.Logger
	now        func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(
	store store.Store,
	classifier SentimentClassifier,
	aggregator *RatingAggregator,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		store:      store,
		classifier: classifier,
		aggregator: aggregator,
		validator:  validation.New(),
		logger:     logger,
		now:        time.Now,
	}
}

// CreateReviewRequest contains a new review.
type CreateReviewRequest struct {
	BookID     string `json:"book_id" validate:"required,notblank"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	ReviewText string `json:"review_text" validate:"max=10000"`
}

// UpdateReviewRequest carries a partial update. Omitted fields are unchanged.
type UpdateReviewRequest struct {
	Rating     *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	ReviewText *string `json:"review_text,omitempty" validate:"omitempty,max=10000"`
}

// ReviewWithUser is a review annotated with its author's display name.
type ReviewWithUser struct {
	domain.Review
	UserName string `json:"user_name"`
}

// ListBookReviews returns a book's reviews, newest first.
func (s *ReviewService) ListBookReviews(ctx context.Context, bookID string) ([]ReviewWithUser, error) {
	if _, err := s.getBook(ctx, bookID); err != nil {
		return nil, err
	}

	reviews, err := s.store.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}
	authors, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get review authors: %w", err)
	}

	out := make([]ReviewWithUser, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewWithUser{Review: *r, UserName: authors[r.UserID].DisplayName()})
	}
	return out, nil
}

// CreateReview records userID's review of a book, classifies its sentiment
// and refreshes the book's rating aggregate.
func (s *ReviewService) CreateReview(ctx context.Context, userID string, req CreateReviewRequest) (*domain.Review, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.getBook(ctx, req.BookID); err != nil {
		return nil, err
	}

	// Fast path; the store's unique (book, user) index settles races.
	if _, err := s.store.GetReviewByBookAndUser(ctx, req.BookID, userID); err == nil {
		return nil, domainerrors.AlreadyExists(msgReviewExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check existing review: %w", err)
	}

	sentiment := s.classifier.Classify(ctx, req.ReviewText)

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		ID:         reviewID,
		BookID:     req.BookID,
		UserID:     userID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
		Sentiment:  &sentiment,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.CreateReview(ctx, review); err != nil {
		switch {
		case errors.Is(err, store.ErrReviewExists):
			return nil, domainerrors.AlreadyExists(msgReviewExists)
		case errors.Is(err, store.ErrBookNotFound):
			return nil, domainerrors.NotFound(msgBookNotFound)
		default:
			return nil, fmt.Errorf("create review: %w", err)
		}
	}

	metrics.RecordReviewCreated(string(sentiment))
	s.logger.Info("review created",
		"review_id", review.ID,
		"book_id", review.BookID,
		"user_id", userID,
		"sentiment", sentiment,
	)

	if _, err := s.aggregator.Recompute(ctx, review.BookID); err != nil {
		return nil, fmt.Errorf("recompute rating: %w", err)
	}

	return review, nil
}

// UpdateReview edits a review owned by userID. Sentiment is re-classified
// only when the text changes.
func (s *ReviewService) UpdateReview(ctx context.Context, userID, reviewID string, req UpdateReviewRequest) (*domain.Review, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsOwnedBy(userID) {
		return nil, domainerrors.Forbidden(msgReviewEditDenied)
	}

	changed := false
	if req.Rating != nil && *req.Rating != review.Rating {
		review.Rating = *req.Rating
		changed = true
	}
	if req.ReviewText != nil && *req.ReviewText != review.ReviewText {
		review.ReviewText = *req.ReviewText
		sentiment := s.classifier.Classify(ctx, review.ReviewText)
		review.Sentiment = &sentiment
		changed = true
	}

	if !changed {
		return review, nil
	}

	now := s.now().UTC()
	review.UpdatedAt = &now

	if err := s.store.UpdateReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgReviewNotFound)
		}
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.logger.Info("review updated", "review_id", review.ID, "user_id", userID)

	if _, err := s.aggregator.Recompute(ctx, review.BookID); err != nil {
		return nil, fmt.Errorf("recompute rating: %w", err)
	}

	return review, nil
}

// DeleteReview removes a review owned by userID and refreshes the book's aggregate.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID string) (*MessageResponse, error) {
	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsOwnedBy(userID) {
		return nil, domainerrors.Forbidden(msgReviewDeleteDenied)
	}

	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgReviewNotFound)
		}
		return nil, fmt.Errorf("delete review: %w", err)
	}

	s.logger.Info("review deleted", "review_id", reviewID, "book_id", review.BookID, "user_id", userID)

	// The book may have been deleted in the meantime; nothing left to aggregate then.
	if _, err := s.aggregator.Recompute(ctx, review.BookID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("recompute rating: %w", err)
	}

	return &MessageResponse{Message: msgReviewDeleted}, nil
}

func (s *ReviewService) getBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

func (s *ReviewService) getReview(ctx context.Context, reviewID string) (*domain.Review, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgReviewNotFound)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}
