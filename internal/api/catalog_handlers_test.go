package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/ai"
	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/search"
	"github.com/bookreview/bookreview-server/internal/service"
)

func TestBookStats(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.signup(t, "Owner", "owner@example.com")
	other := ts.signup(t, "Other", "other@example.com")
	book := ts.createBook(t, owner.AccessToken, "Dune", "Frank Herbert", "Science Fiction")

	ts.review(t, owner.AccessToken, book.ID, 5, "Great")
	ts.chat.set(ai.OperationSentiment, "negative")
	ts.review(t, other.AccessToken, book.ID, 1, "Awful")

	resp := ts.api.Get("/api/books/" + book.ID + "/stats")
	require.Equal(t, http.StatusOK, resp.Code)

	stats := decodeBody[domain.BookStats](t, resp)
	assert.Equal(t, 2, stats.TotalReviews)
	assert.Equal(t, map[string]int{"1": 1, "2": 0, "3": 0, "4": 0, "5": 1}, stats.RatingDistribution)
	assert.Equal(t, 1, stats.SentimentDistribution[domain.SentimentPositive])
	assert.Equal(t, 1, stats.SentimentDistribution[domain.SentimentNegative])
	assert.Equal(t, 0, stats.SentimentDistribution[domain.SentimentNeutral])

	assert.Equal(t, http.StatusNotFound, ts.api.Get("/api/books/book-missing/stats").Code)
}

func TestListGenres(t *testing.T) {
	ts := setupTestServer(t)

	assert.JSONEq(t, `{"genres":[]}`, ts.api.Get("/api/genres").Body.String())

	owner := ts.signup(t, "Owner", "owner@example.com")
	ts.createBook(t, owner.AccessToken, "One", "A", "Mystery")
	ts.createBook(t, owner.AccessToken, "Two", "B", "Fantasy")
	ts.createBook(t, owner.AccessToken, "Three", "C", "Mystery")

	for _, path := range []string{"/api/genres", "/api/books/genres"} {
		t.Run(path, func(t *testing.T) {
			resp := ts.api.Get(path)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			genres := decodeBody[service.GenreListResponse](t, resp)
			assert.Equal(t, []string{"Fantasy", "Mystery"}, genres.Genres)
		})
	}

	// The alias does not shadow book lookups.
	resp := ts.api.Get("/api/books/book-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Book not found", decodeError(t, resp).Detail)
}

func TestRecommendations(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.signup(t, "Owner", "owner@example.com")
	reader := ts.signup(t, "Reader", "reader@example.com")
	dune := ts.createBook(t, owner.AccessToken, "Dune", "Frank Herbert", "Science Fiction")
	emma := ts.createBook(t, owner.AccessToken, "Emma", "Jane Austen", "Classic")
	ts.review(t, owner.AccessToken, dune.ID, 5, "Great")
	ts.review(t, owner.AccessToken, emma.ID, 3, "Fine")

	t.Run("requires authentication", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, ts.api.Get("/api/ai/recommendations").Code)
	})

	t.Run("new reader gets top rated books", func(t *testing.T) {
		resp := ts.api.Get("/api/ai/recommendations", bearer(reader.AccessToken))
		require.Equal(t, http.StatusOK, resp.Code)

		recs := decodeBody[service.RecommendationResponse](t, resp).Recommendations
		assert.Equal(t, []string{"Dune by Frank Herbert", "Emma by Jane Austen"}, recs)
	})

	t.Run("history goes to the model", func(t *testing.T) {
		ts.chat.set(ai.OperationRecommendations, "Here you go:\n1. Neuromancer by William Gibson\n2. Hyperion by Dan Simmons\n3. Solaris by Stanislaw Lem")

		resp := ts.api.Get("/api/ai/recommendations?limit=2", bearer(owner.AccessToken))
		require.Equal(t, http.StatusOK, resp.Code)

		recs := decodeBody[service.RecommendationResponse](t, resp).Recommendations
		assert.Equal(t, []string{"Neuromancer by William Gibson", "Hyperion by Dan Simmons"}, recs)
	})

	t.Run("limit out of range", func(t *testing.T) {
		resp := ts.api.Get("/api/ai/recommendations?limit=50", bearer(owner.AccessToken))
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("model failure yields empty list", func(t *testing.T) {
		ts.chat.fail(errors.New("quota exceeded"))

		resp := ts.api.Get("/api/ai/recommendations", bearer(owner.AccessToken))
		require.Equal(t, http.StatusOK, resp.Code)

		assert.JSONEq(t, `{"recommendations":[]}`, resp.Body.String())
	})
}

func TestSearch(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		ts := setupTestServer(t)

		resp := ts.api.Get("/api/search?q=dune")
		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Search is disabled", decodeError(t, resp).Detail)
	})

	ts := setupTestServer(t, withSearchIndex)
	owner := ts.signup(t, "Owner", "owner@example.com")
	dune := ts.createBook(t, owner.AccessToken, "Dune", "Frank Herbert", "Science Fiction")
	ts.createBook(t, owner.AccessToken, "Emma", "Jane Austen", "Classic")
	ts.createBook(t, owner.AccessToken, "Hyperion", "Dan Simmons", "Science Fiction")

	t.Run("health reports the index", func(t *testing.T) {
		health := decodeBody[HealthResponse](t, ts.api.Get("/api/health"))
		assert.Equal(t, "enabled", health.Components["search"])
	})

	t.Run("text query", func(t *testing.T) {
		resp := ts.api.Get("/api/search?q=herbert")
		require.Equal(t, http.StatusOK, resp.Code)

		result := decodeBody[search.SearchResult](t, resp)
		require.Len(t, result.Hits, 1)
		assert.Equal(t, dune.ID, result.Hits[0].ID)
	})

	t.Run("genre filter", func(t *testing.T) {
		result := decodeBody[search.SearchResult](t, ts.api.Get("/api/search?genre=Science%20Fiction"))
		assert.Equal(t, uint64(2), result.Total)
	})

	t.Run("rating filter follows reviews", func(t *testing.T) {
		ts.review(t, owner.AccessToken, dune.ID, 5, "Great")

		result := decodeBody[search.SearchResult](t, ts.api.Get("/api/search?min_rating=4"))
		require.Len(t, result.Hits, 1)
		assert.Equal(t, dune.ID, result.Hits[0].ID)
	})

	t.Run("invalid sort", func(t *testing.T) {
		assert.Equal(t, http.StatusUnprocessableEntity, ts.api.Get("/api/search?sort_by=price").Code)
	})
}
