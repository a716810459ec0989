// Package storetest holds behaviour tests shared by every store.Store implementation.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/store"
)

// Opener returns a fresh, empty store that is closed when the test ends.
type Opener func(t *testing.T) store.Store

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Run executes the shared suite against the stores produced by open.
func Run(t *testing.T, open Opener) {
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("BookCRUD", func(t *testing.T) { testBookCRUD(t, open(t)) })
	t.Run("ListBooks", func(t *testing.T) { testListBooks(t, open(t)) })
	t.Run("GenresAndTopRated", func(t *testing.T) { testGenresAndTopRated(t, open(t)) })
	t.Run("Reviews", func(t *testing.T) { testReviews(t, open(t)) })
	t.Run("DeleteBookCascades", func(t *testing.T) { testDeleteBookCascades(t, open(t)) })
}

// NewUser builds a user with a deterministic ID.
func NewUser(n int) *domain.User {
	return &domain.User{
		ID:           fmt.Sprintf("user-%d", n),
		Name:         fmt.Sprintf("User %d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "hash",
		CreatedAt:    base.Add(time.Duration(n) * time.Minute),
	}
}

// NewBook builds a book owned by ownerID.
func NewBook(n int, ownerID string) *domain.Book {
	created := base.Add(time.Duration(n) * time.Hour)
	return &domain.Book{
		ID:            fmt.Sprintf("book-%d", n),
		Title:         fmt.Sprintf("Book %d", n),
		Author:        "Author",
		Description:   "A description",
		Genre:         "Fiction",
		PublishedYear: 2000 + n,
		AddedBy:       ownerID,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

// NewReview builds a review of bookID by userID.
func NewReview(id, bookID, userID string, rating int, created time.Time) *domain.Review {
	return &domain.Review{
		ID:         id,
		BookID:     bookID,
		UserID:     userID,
		Rating:     rating,
		ReviewText: "Review text",
		CreatedAt:  created,
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser(1)
	u.Email = "Ada@Example.com"
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, got.Name)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	byEmail, err := s.GetUserByEmail(ctx, "  ada@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	dup := NewUser(2)
	dup.Email = "ada@example.com"
	assert.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrEmailExists)

	_, err = s.GetUser(ctx, "user-missing")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	require.NoError(t, s.CreateUser(ctx, NewUser(3)))
	users, err := s.GetUsersByIDs(ctx, []string{"user-1", "user-3", "user-missing", "user-1"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Contains(t, users, "user-1")
	assert.Contains(t, users, "user-3")
}

func testBookCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, NewUser(1)))

	book := NewBook(1, "user-1")
	require.NoError(t, s.CreateBook(ctx, book))

	got, err := s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, got.Title)
	assert.Equal(t, book.PublishedYear, got.PublishedYear)
	assert.Equal(t, "user-1", got.AddedBy)
	assert.Zero(t, got.TotalReviews)

	_, err = s.SetBookRating(ctx, book.ID, domain.RatingSummary{AverageRating: 4.5, TotalReviews: 2})
	require.NoError(t, err)

	// UpdateBook never touches the aggregate, even when handed stale values.
	edit := *book
	edit.Title = "Renamed"
	edit.AverageRating = 0
	edit.TotalReviews = 0
	edit.UpdatedAt = base.Add(48 * time.Hour)
	require.NoError(t, s.UpdateBook(ctx, &edit))

	got, err = s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.InDelta(t, 4.5, got.AverageRating, 1e-9)
	assert.Equal(t, 2, got.TotalReviews)
	assert.True(t, edit.UpdatedAt.Equal(got.UpdatedAt))

	missing := NewBook(99, "user-1")
	assert.ErrorIs(t, s.UpdateBook(ctx, missing), store.ErrBookNotFound)
	_, err = s.SetBookRating(ctx, missing.ID, domain.RatingSummary{})
	assert.ErrorIs(t, err, store.ErrBookNotFound)
	_, err = s.GetBook(ctx, missing.ID)
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	require.NoError(t, s.DeleteBook(ctx, book.ID))
	_, err = s.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, store.ErrBookNotFound)
	assert.NoError(t, s.DeleteBook(ctx, book.ID))
}

func testListBooks(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, NewUser(1)))

	specs := []struct {
		title, author, description, genre string
	}{
		{"Zeta Test", "Ann", "plain", "Fiction"},
		{"Alpha", "Bob Tester", "plain", "Science"},
		{"Middle", "Cy", "contains TEST in body", "Fiction"},
		{"Other", "Dee", "nothing here", "Fiction"},
		{"Regex (chars)", "Eve", "a.c", "History"},
	}
	for i, sp := range specs {
		b := NewBook(i+1, "user-1")
		b.Title, b.Author, b.Description, b.Genre = sp.title, sp.author, sp.description, sp.genre
		require.NoError(t, s.CreateBook(ctx, b))
	}

	titles := func(page *domain.BookPage) []string {
		out := make([]string, 0, len(page.Books))
		for _, b := range page.Books {
			out = append(out, b.Title)
		}
		return out
	}

	page, err := s.ListBooks(ctx, domain.BookQuery{Search: "test", SortBy: domain.SortTitle, SortOrder: domain.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []string{"Alpha", "Middle", "Zeta Test"}, titles(page))

	// Default order is newest first with a page size of 5.
	page, err = s.ListBooks(ctx, domain.BookQuery{})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, "Regex (chars)", page.Books[0].Title)

	page, err = s.ListBooks(ctx, domain.BookQuery{Genre: "Fiction", SortBy: domain.SortCreatedAt, SortOrder: domain.SortAsc, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []string{"Other"}, titles(page))

	page, err = s.ListBooks(ctx, domain.BookQuery{Page: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Empty(t, page.Books)

	// Search is literal.
	page, err = s.ListBooks(ctx, domain.BookQuery{Search: "(chars)"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	page, err = s.ListBooks(ctx, domain.BookQuery{Search: "a.c"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	page, err = s.ListBooks(ctx, domain.BookQuery{Search: "%"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	// Unknown sort fields fall back to created_at.
	page, err = s.ListBooks(ctx, domain.BookQuery{SortBy: "password_hash", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "Zeta Test", page.Books[0].Title)

	all, err := s.ListAllBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	// Case folding covers non-ASCII letters on both sides.
	accented := NewBook(6, "user-1")
	accented.Title, accented.Author, accented.Genre = "Émile", "JEAN-JACQUES ROUSSEAU", "Philosophy"
	accented.Description = "ÜBER DIE ERZIEHUNG"
	require.NoError(t, s.CreateBook(ctx, accented))

	for _, needle := range []string{"émile", "ÉMILE", "über", "jean-jacques"} {
		page, err = s.ListBooks(ctx, domain.BookQuery{Search: needle})
		require.NoError(t, err)
		assert.Equal(t, []string{"Émile"}, titles(page), needle)
	}
}

func testGenresAndTopRated(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, NewUser(1)))

	genres, err := s.ListGenres(ctx)
	require.NoError(t, err)
	assert.Empty(t, genres)

	ratings := []float64{3.5, 4.8, 0, 4.8}
	names := []string{"Mystery", "Fiction", "", "Fiction"}
	for i := range ratings {
		b := NewBook(i+1, "user-1")
		b.Genre = names[i]
		require.NoError(t, s.CreateBook(ctx, b))
		_, err := s.SetBookRating(ctx, b.ID, domain.RatingSummary{AverageRating: ratings[i], TotalReviews: 1})
		require.NoError(t, err)
	}

	genres, err = s.ListGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fiction", "Mystery"}, genres)

	top, err := s.ListTopRatedBooks(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "book-2", top[0].ID)
	assert.Equal(t, "book-4", top[1].ID)
	assert.Equal(t, "book-1", top[2].ID)
}

func testReviews(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, NewUser(1)))
	require.NoError(t, s.CreateUser(ctx, NewUser(2)))
	require.NoError(t, s.CreateBook(ctx, NewBook(1, "user-1")))
	require.NoError(t, s.CreateBook(ctx, NewBook(2, "user-1")))

	r1 := NewReview("review-1", "book-1", "user-1", 5, base)
	require.NoError(t, s.CreateReview(ctx, r1))
	require.NoError(t, s.CreateReview(ctx, NewReview("review-2", "book-1", "user-2", 1, base.Add(time.Hour))))
	require.NoError(t, s.CreateReview(ctx, NewReview("review-3", "book-2", "user-1", 3, base.Add(2*time.Hour))))

	// One review per (book, user).
	err := s.CreateReview(ctx, NewReview("review-4", "book-1", "user-1", 2, base))
	assert.ErrorIs(t, err, store.ErrReviewExists)

	err = s.CreateReview(ctx, NewReview("review-5", "book-missing", "user-1", 2, base))
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	got, err := s.GetReview(ctx, "review-1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	assert.Nil(t, got.Sentiment)
	assert.Nil(t, got.UpdatedAt)

	mine, err := s.GetReviewByBookAndUser(ctx, "book-1", "user-2")
	require.NoError(t, err)
	assert.Equal(t, "review-2", mine.ID)
	_, err = s.GetReviewByBookAndUser(ctx, "book-2", "user-2")
	assert.ErrorIs(t, err, store.ErrReviewNotFound)

	byBook, err := s.ListReviewsByBook(ctx, "book-1")
	require.NoError(t, err)
	require.Len(t, byBook, 2)
	assert.Equal(t, "review-2", byBook[0].ID)

	byUser, err := s.ListReviewsByUser(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, "review-3", byUser[0].ID)

	limited, err := s.ListReviewsByUser(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	sentiment := domain.SentimentPositive
	edited := base.Add(3 * time.Hour)
	got.Rating = 4
	got.ReviewText = "Changed my mind"
	got.Sentiment = &sentiment
	got.UpdatedAt = &edited
	require.NoError(t, s.UpdateReview(ctx, got))

	got, err = s.GetReview(ctx, "review-1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "Changed my mind", got.ReviewText)
	require.NotNil(t, got.Sentiment)
	assert.Equal(t, domain.SentimentPositive, *got.Sentiment)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, edited.Equal(*got.UpdatedAt))

	assert.ErrorIs(t, s.UpdateReview(ctx, NewReview("review-missing", "book-1", "user-1", 1, base)), store.ErrReviewNotFound)

	require.NoError(t, s.DeleteReview(ctx, "review-1"))
	_, err = s.GetReview(ctx, "review-1")
	assert.ErrorIs(t, err, store.ErrReviewNotFound)
	assert.NoError(t, s.DeleteReview(ctx, "review-1"))

	// The pair is free again after deletion.
	require.NoError(t, s.CreateReview(ctx, NewReview("review-6", "book-1", "user-1", 2, base.Add(4*time.Hour))))
}

func testDeleteBookCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, NewUser(1)))
	require.NoError(t, s.CreateBook(ctx, NewBook(1, "user-1")))
	require.NoError(t, s.CreateBook(ctx, NewBook(2, "user-1")))
	require.NoError(t, s.CreateReview(ctx, NewReview("review-1", "book-1", "user-1", 5, base)))
	require.NoError(t, s.CreateReview(ctx, NewReview("review-2", "book-2", "user-1", 4, base)))

	require.NoError(t, s.DeleteBook(ctx, "book-1"))

	_, err := s.GetReview(ctx, "review-1")
	assert.ErrorIs(t, err, store.ErrReviewNotFound)

	byUser, err := s.ListReviewsByUser(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "review-2", byUser[0].ID)

	// The user may review a re-created book with the same ID.
	require.NoError(t, s.CreateBook(ctx, NewBook(1, "user-1")))
	require.NoError(t, s.CreateReview(ctx, NewReview("review-3", "book-1", "user-1", 3, base)))
}
