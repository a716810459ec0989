package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/store"
)

// reviewColumns is the ordered list of columns selected in review queries.
// Must match the scan order in scanReview.
const reviewColumns = `id, book_id, user_id, rating, review_text, sentiment, created_at, updated_at`

func scanReview(row scanner) (*domain.Review, error) {
	var (
		r         domain.Review
		sentiment sql.NullString
		createdAt string
		updatedAt sql.NullString
	)
	err := row.Scan(
		&r.ID,
		&r.BookID,
		&r.UserID,
		&r.Rating,
		&r.ReviewText,
		&sentiment,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sentiment.Valid {
		label := domain.Sentiment(sentiment.String)
		r.Sentiment = &label
	}
	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseNullableTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func nullSentiment(s *domain.Sentiment) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}

func (s *Store) queryReviews(ctx context.Context, query string, args ...any) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// CreateReview inserts a review. The foreign key rejects reviews of missing books
// and the (book_id, user_id) constraint rejects a second review by the same user.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, book_id, user_id, rating, review_text, sentiment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.BookID,
		review.UserID,
		review.Rating,
		review.ReviewText,
		nullSentiment(review.Sentiment),
		formatTime(review.CreatedAt),
		nullTimeString(review.UpdatedAt),
	)
	switch {
	case isForeignKeyViolation(err):
		return store.ErrBookNotFound
	case isUniqueViolation(err):
		return store.ErrReviewExists
	case err != nil:
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)
	return reviewOrNotFound(scanReview(row))
}

// GetReviewByBookAndUser returns the user's review of a book.
func (s *Store) GetReviewByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_id = ? AND user_id = ?`, bookID, userID)
	return reviewOrNotFound(scanReview(row))
}

func reviewOrNotFound(r *domain.Review, err error) (*domain.Review, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return r, nil
}

// UpdateReview writes the rating, text, sentiment and edit time of an existing review.
func (s *Store) UpdateReview(ctx context.Context, review *domain.Review) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET rating = ?, review_text = ?, sentiment = ?, updated_at = ?
		WHERE id = ?`,
		review.Rating,
		review.ReviewText,
		nullSentiment(review.Sentiment),
		nullTimeString(review.UpdatedAt),
		review.ID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return requireAffected(res, store.ErrReviewNotFound)
}

// DeleteReview removes a review. Deleting a missing review is not an error.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// ListReviewsByBook returns a book's reviews, newest first.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	reviews, err := s.queryReviews(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE book_id = ? ORDER BY created_at DESC, id DESC`, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for book: %w", err)
	}
	return reviews, nil
}

// ListReviewsByUser returns the user's reviews, newest first, capped at limit when positive.
func (s *Store) ListReviewsByUser(ctx context.Context, userID string, limit int) ([]*domain.Review, error) {
	if limit <= 0 {
		limit = -1
	}
	reviews, err := s.queryReviews(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews for user: %w", err)
	}
	return reviews, nil
}
