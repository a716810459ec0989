package domain

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []int{5}, 5.0},
		{"two", []int{5, 1}, 3.0},
		{"repeating decimal", []int{5, 4, 4}, 4.3},
		{"thirds round down", []int{1, 2, 2}, 1.7},
		{"all ones", []int{1, 1, 1, 1}, 1.0},
		{"exact half rounds to even", []int{5, 5, 4, 3}, 4.2},          // 4.25
		{"stored above half rounds up", ratingsOf(19, 1, 1, 2), 1.1},   // 21/20
		{"stored below half rounds down", ratingsOf(17, 1, 3, 2), 1.1}, // 23/20
		{"three decimals", ratingsOf(7, 5, 1, 4), 4.9},                 // 39/8 = 4.875
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AverageRating(tt.ratings), 1e-9)
		})
	}
}

// ratingsOf returns n copies of a followed by m copies of b.
func ratingsOf(n, a, m, b int) []int {
	out := slices.Repeat([]int{a}, n)
	return append(out, slices.Repeat([]int{b}, m)...)
}

func TestSummarizeReviews(t *testing.T) {
	summary := SummarizeReviews([]*Review{{Rating: 4}, {Rating: 2}})
	assert.Equal(t, 2, summary.TotalReviews)
	assert.InDelta(t, 3.0, summary.AverageRating, 1e-9)

	empty := SummarizeReviews(nil)
	assert.Zero(t, empty.TotalReviews)
	assert.Zero(t, empty.AverageRating)
}

func TestParseSentiment(t *testing.T) {
	tests := map[string]Sentiment{
		"positive":              SentimentPositive,
		"  Positive\n":          SentimentPositive,
		"NEGATIVE":              SentimentNegative,
		"\tneutral ":            SentimentNeutral,
		"Negative.":             SentimentNeutral,
		"positive!":             SentimentNeutral,
		"\"negative\"":          SentimentNeutral,
		"mixed":                 SentimentNeutral,
		"":                      SentimentNeutral,
		"positive and negative": SentimentNeutral,
	}

	for reply, want := range tests {
		t.Run(reply, func(t *testing.T) {
			assert.Equal(t, want, ParseSentiment(reply))
		})
	}
}

func TestValidRating(t *testing.T) {
	assert.False(t, ValidRating(0))
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(6))
}

func TestComputeBookStats(t *testing.T) {
	pos := SentimentPositive
	neg := SentimentNegative
	reviews := []*Review{
		{Rating: 5, Sentiment: &pos},
		{Rating: 5, Sentiment: &pos},
		{Rating: 1, Sentiment: &neg},
		{Rating: 3},
	}

	stats := ComputeBookStats("book-1", reviews)

	assert.Equal(t, "book-1", stats.BookID)
	assert.Equal(t, 4, stats.TotalReviews)
	assert.InDelta(t, 3.5, stats.AverageRating, 1e-9)
	assert.Equal(t, map[string]int{"1": 1, "2": 0, "3": 1, "4": 0, "5": 2}, stats.RatingDistribution)
	assert.Equal(t, map[Sentiment]int{SentimentPositive: 2, SentimentNegative: 1, SentimentNeutral: 1}, stats.SentimentDistribution)
}

func TestComputeBookStats_Empty(t *testing.T) {
	stats := ComputeBookStats("book-1", nil)

	assert.Zero(t, stats.TotalReviews)
	assert.Len(t, stats.RatingDistribution, 5)
	assert.Len(t, stats.SentimentDistribution, 3)
}

func TestBookPatch_Apply(t *testing.T) {
	book := &Book{Title: "Old", Author: "A", PublishedYear: 1999}
	title := "New"
	sameAuthor := "A"

	changed := BookPatch{Title: &title, Author: &sameAuthor}.Apply(book)
	assert.True(t, changed)
	assert.Equal(t, "New", book.Title)

	assert.False(t, BookPatch{Author: &sameAuthor}.Apply(book))
	assert.True(t, BookPatch{}.IsEmpty())
}

func TestUser_DisplayName(t *testing.T) {
	var missing *User
	assert.Equal(t, UnknownUserName, missing.DisplayName())
	assert.Equal(t, "Ada", (&User{Name: "Ada"}).DisplayName())
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}

func TestBookQuery_Normalize(t *testing.T) {
	q := BookQuery{SortBy: "password_hash", SortOrder: "", Page: 0, Limit: 1000}.Normalize()
	assert.Equal(t, SortCreatedAt, q.SortBy)
	assert.Equal(t, SortDesc, q.SortOrder)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxPageSize, q.Limit)

	q = BookQuery{SortBy: SortTitle, SortOrder: "ascending", Page: 3, Limit: 0}.Normalize()
	assert.Equal(t, SortTitle, q.SortBy)
	assert.Equal(t, SortAsc, q.SortOrder)
	assert.Equal(t, DefaultPageSize, q.Limit)
	assert.Equal(t, 10, q.Offset())
}

func TestBookQuery_Matches(t *testing.T) {
	book := &Book{Title: "The Test Pilot", Author: "Jane Roe", Description: "A story about (regex) chars", Genre: "Fiction"}

	assert.True(t, BookQuery{}.Matches(book))
	assert.True(t, BookQuery{Search: "test"}.Matches(book))
	assert.True(t, BookQuery{Search: "ROE"}.Matches(book))
	assert.True(t, BookQuery{Search: "(regex)"}.Matches(book))
	assert.False(t, BookQuery{Search: "t.st"}.Matches(book))
	assert.True(t, BookQuery{Genre: "Fiction"}.Matches(book))
	assert.False(t, BookQuery{Genre: "fiction"}.Matches(book))
}

func TestBookQuery_Compare(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	books := []*Book{
		{ID: "b", Title: "Beta", CreatedAt: base.Add(time.Hour), AverageRating: 4},
		{ID: "a", Title: "Alpha", CreatedAt: base, AverageRating: 4},
		{ID: "c", Title: "Gamma", CreatedAt: base.Add(2 * time.Hour), AverageRating: 2},
	}

	ids := func(q BookQuery) []string {
		sorted := slices.Clone(books)
		q = q.Normalize()
		slices.SortFunc(sorted, q.Compare)
		out := make([]string, 0, len(sorted))
		for _, b := range sorted {
			out = append(out, b.ID)
		}
		return out
	}

	assert.Equal(t, []string{"c", "b", "a"}, ids(BookQuery{}))
	assert.Equal(t, []string{"a", "b", "c"}, ids(BookQuery{SortBy: SortTitle, SortOrder: SortAsc}))
	assert.Equal(t, []string{"b", "a", "c"}, ids(BookQuery{SortBy: SortAverageRating}))
	require.Equal(t, []string{"c", "a", "b"}, ids(BookQuery{SortBy: SortAverageRating, SortOrder: SortAsc}))
}
