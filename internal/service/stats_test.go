package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

func TestBookStats(t *testing.T) {
	ts := setupServices(t)
	owner := ts.signup(t, "Owner", "owner@example.com")
	a := ts.signup(t, "A", "a@example.com")
	b := ts.signup(t, "B", "b@example.com")
	c := ts.signup(t, "C", "c@example.com")
	book := ts.createBook(t, owner.ID, "Dune", "Frank Herbert", "Science Fiction")
	ctx := context.Background()

	ts.review(t, a.ID, book.ID, 5, "Wonderful")
	ts.classifier.label = domain.SentimentNegative
	ts.review(t, b.ID, book.ID, 2, "Dull")

	// Reviews stored before classification existed count as neutral.
	require.NoError(t, ts.store.CreateReview(ctx, &domain.Review{
		ID: "review-legacy", BookID: book.ID, UserID: c.ID, Rating: 5,
	}))

	stats, err := ts.stats.BookStats(ctx, book.ID)
	require.NoError(t, err)

	assert.Equal(t, book.ID, stats.BookID)
	assert.Equal(t, 3, stats.TotalReviews)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
	assert.Equal(t, map[string]int{"1": 0, "2": 1, "3": 0, "4": 0, "5": 2}, stats.RatingDistribution)
	assert.Equal(t, map[domain.Sentiment]int{
		domain.SentimentPositive: 1,
		domain.SentimentNegative: 1,
		domain.SentimentNeutral:  1,
	}, stats.SentimentDistribution)
}

func TestBookStats_EmptyAndMissing(t *testing.T) {
	ts := setupServices(t)
	owner := ts.signup(t, "Owner", "owner@example.com")
	book := ts.createBook(t, owner.ID, "Unread", "Nobody", "Fiction")

	stats, err := ts.stats.BookStats(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReviews)
	assert.Len(t, stats.RatingDistribution, 5)
	assert.Len(t, stats.SentimentDistribution, 3)

	_, err = ts.stats.BookStats(context.Background(), "book-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListGenres(t *testing.T) {
	ts := setupServices(t)

	empty, err := ts.genres.ListGenres(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty.Genres)
	assert.Empty(t, empty.Genres)

	owner := ts.signup(t, "Owner", "owner@example.com")
	ts.createBook(t, owner.ID, "One", "A", "Mystery")
	ts.createBook(t, owner.ID, "Two", "B", "Fantasy")
	ts.createBook(t, owner.ID, "Three", "C", "Mystery")

	resp, err := ts.genres.ListGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy", "Mystery"}, resp.Genres)
}
