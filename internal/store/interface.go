// Package store defines the persistence interface for the book review server
// and its default Badger implementation.
package store

import (
	"context"

	"github.com/bookreview/bookreview-server/internal/domain"
)

// Store defines every persistence operation the services need.
// Implementations must be safe for concurrent use.
type Store interface {
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	// UpdateBook writes the editable fields; the stored rating aggregate is kept.
	UpdateBook(ctx context.Context, book *domain.Book) error
	// DeleteBook removes the book and all of its reviews. Deleting a missing book is not an error.
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, query domain.BookQuery) (*domain.BookPage, error)
	ListAllBooks(ctx context.Context) ([]*domain.Book, error)
	ListTopRatedBooks(ctx context.Context, n int) ([]*domain.Book, error)
	ListGenres(ctx context.Context) ([]string, error)
	SetBookRating(ctx context.Context, id string, summary domain.RatingSummary) (*domain.Book, error)

	// Reviews
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	UpdateReview(ctx context.Context, review *domain.Review) error
	DeleteReview(ctx context.Context, id string) error
	ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error)
	// ListReviewsByUser returns the user's newest reviews first; limit <= 0 means all.
	ListReviewsByUser(ctx context.Context, userID string, limit int) ([]*domain.Review, error)
	GetReviewByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error)
}
