package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookreview/bookreview-server/internal/domain"
)

// CreateBook stores a new book.
func (s *BadgerStore) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := s.books.Create(ctx, book.ID, book); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *BadgerStore) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.books.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBookNotFound
	}
	return book, err
}

// UpdateBook writes the editable fields of book onto the stored record.
func (s *BadgerStore) UpdateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.books.Mutate(ctx, book.ID, func(stored *domain.Book) error {
		stored.Title = book.Title
		stored.Author = book.Author
		stored.Description = book.Description
		stored.Genre = book.Genre
		stored.PublishedYear = book.PublishedYear
		stored.UpdatedAt = book.UpdatedAt
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrBookNotFound
	}
	return err
}

// DeleteBook removes a book and its reviews in one transaction.
func (s *BadgerStore) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.update(func(txn *badger.Txn) error {
		reviewIDs, err := s.reviews.idsByIndexTxn(txn, indexBook, id)
		if err != nil {
			return fmt.Errorf("list book reviews: %w", err)
		}
		for _, reviewID := range reviewIDs {
			if err := s.reviews.deleteTxn(txn, reviewID); err != nil {
				return fmt.Errorf("delete review %s: %w", reviewID, err)
			}
		}
		return s.books.deleteTxn(txn, id)
	})
}

// ListBooks filters, sorts and paginates the catalogue in memory.
func (s *BadgerStore) ListBooks(ctx context.Context, query domain.BookQuery) (*domain.BookPage, error) {
	query = query.Normalize()

	all, err := s.books.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	matched := make([]*domain.Book, 0, len(all))
	for _, b := range all {
		if query.Matches(b) {
			matched = append(matched, b)
		}
	}
	slices.SortFunc(matched, query.Compare)

	page := &domain.BookPage{Total: len(matched), Books: []*domain.Book{}}
	start := query.Offset()
	if start >= len(matched) {
		return page, nil
	}
	end := min(start+query.Limit, len(matched))
	page.Books = matched[start:end]
	return page, nil
}

// ListAllBooks returns every book in store order.
func (s *BadgerStore) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.books.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// ListTopRatedBooks returns up to n books by average rating, highest first.
// Equal ratings keep the oldest book first.
func (s *BadgerStore) ListTopRatedBooks(ctx context.Context, n int) ([]*domain.Book, error) {
	books, err := s.ListAllBooks(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(books, compareTopRated)
	if n >= 0 && len(books) > n {
		books = books[:n]
	}
	return books, nil
}

// ListGenres returns the distinct non-empty genres, sorted.
func (s *BadgerStore) ListGenres(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	genres := []string{}
	for book, err := range s.books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		if book.Genre == "" || seen[book.Genre] {
			continue
		}
		seen[book.Genre] = true
		genres = append(genres, book.Genre)
	}
	slices.Sort(genres)
	return genres, nil
}

// SetBookRating persists the rating aggregate onto the book.
func (s *BadgerStore) SetBookRating(ctx context.Context, id string, summary domain.RatingSummary) (*domain.Book, error) {
	book, err := s.books.Mutate(ctx, id, func(b *domain.Book) error {
		b.AverageRating = summary.AverageRating
		b.TotalReviews = summary.TotalReviews
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBookNotFound
	}
	return book, err
}

func compareTopRated(a, b *domain.Book) int {
	if c := cmp.Compare(b.AverageRating, a.AverageRating); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// newestFirst orders reviews by creation time descending, then ID.
func newestFirst(a, b *domain.Review) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

