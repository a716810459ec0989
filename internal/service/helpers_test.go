package service

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/auth"
	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/search"
	"github.com/bookreview/bookreview-server/internal/store"
)

// stubClassifier returns a fixed label and records what it was asked.
type stubClassifier struct {
	mu    sync.Mutex
	label domain.Sentiment
	texts []string
}

func (c *stubClassifier) Classify(_ context.Context, text string) domain.Sentiment {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return c.label
}

func (c *stubClassifier) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.texts)
}

type testServices struct {
	store      store.Store
	tokens     auth.TokenIssuer
	classifier *stubClassifier
	search     *SearchService
	auth       *AuthService
	books      *BookService
	reviews    *ReviewService
	stats      *StatsService
	genres     *GenreService
	aggregator *RatingAggregator
}

type serviceOptions struct {
	withSearch bool
}

// setupServices wires every service against a Badger store in a temp dir.
func setupServices(t *testing.T, opts ...func(*serviceOptions)) *testServices {
	t.Helper()

	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := slog.New(slog.DiscardHandler)

	s, err := store.New(filepath.Join(t.TempDir(), "badger"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tokens, err := auth.NewTokenIssuer(auth.FormatJWT, bytes.Repeat([]byte{0x42}, 32), time.Hour)
	require.NoError(t, err)

	var index *search.SearchIndex
	if o.withSearch {
		index, err = search.NewSearchIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
		require.NoError(t, err)
		t.Cleanup(func() { _ = index.Close() })
	}
	searchSvc := NewSearchService(index, s, logger)

	classifier := &stubClassifier{label: domain.SentimentPositive}
	aggregator := NewRatingAggregator(s, searchSvc, logger)

	clock := &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	authSvc := NewAuthService(s, tokens, logger)
	authSvc.now = clock.Now
	books := NewBookService(s, searchSvc, logger)
	books.now = clock.Now
	reviews := NewReviewService(s, classifier, aggregator, logger)
	reviews.now = clock.Now

	return &testServices{
		store:      s,
		tokens:     tokens,
		classifier: classifier,
		search:     searchSvc,
		auth:       authSvc,
		books:      books,
		reviews:    reviews,
		stats:      NewStatsService(s),
		genres:     NewGenreService(s),
		aggregator: aggregator,
	}
}

// testClock advances one second per reading so creation order is unambiguous.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func withSearch(o *serviceOptions) { o.withSearch = true }

func (ts *testServices) signup(t *testing.T, name, email string) *UserResponse {
	t.Helper()
	resp, err := ts.auth.Signup(context.Background(), SignupRequest{Name: name, Email: email, Password: "password123"})
	require.NoError(t, err)
	return resp.User
}

func (ts *testServices) createBook(t *testing.T, ownerID, title, author, genre string) *BookResponse {
	t.Helper()
	book, err := ts.books.CreateBook(context.Background(), ownerID, CreateBookRequest{
		Title:         title,
		Author:        author,
		Description:   "Description of " + title,
		Genre:         genre,
		PublishedYear: 1990,
	})
	require.NoError(t, err)
	return book
}

func (ts *testServices) review(t *testing.T, userID, bookID string, rating int, text string) *domain.Review {
	t.Helper()
	r, err := ts.reviews.CreateReview(context.Background(), userID, CreateReviewRequest{
		BookID:     bookID,
		Rating:     rating,
		ReviewText: text,
	})
	require.NoError(t, err)
	return r
}

func ptr[T any](v T) *T { return &v }
