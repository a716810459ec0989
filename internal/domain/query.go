package domain

import (
	"cmp"
	"strings"
)

// Book list sort fields.
const (
	SortCreatedAt     = "created_at"
	SortTitle         = "title"
	SortAuthor        = "author"
	SortPublishedYear = "published_year"
	SortAverageRating = "average_rating"
)

// Sort orders.
const (
	SortDesc = "desc"
	SortAsc  = "asc"
)

// Paging defaults for book listings.
const (
	DefaultPage     = 1
	DefaultPageSize = 5
	MaxPageSize     = 100
)

var sortFields = map[string]bool{
	SortCreatedAt:     true,
	SortTitle:         true,
	SortAuthor:        true,
	SortPublishedYear: true,
	SortAverageRating: true,
}

// BookQuery filters, sorts and paginates the book catalogue.
type BookQuery struct {
	Search    string // case-insensitive substring of title, author or description
	Genre     string // exact match
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Normalize fills defaults and clamps values into range.
// Unknown sort fields fall back to created_at; only "desc" (or empty) sorts descending.
func (q BookQuery) Normalize() BookQuery {
	q.Search = strings.TrimSpace(q.Search)
	if !sortFields[q.SortBy] {
		q.SortBy = SortCreatedAt
	}
	if q.SortOrder == "" || q.SortOrder == SortDesc {
		q.SortOrder = SortDesc
	} else {
		q.SortOrder = SortAsc
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

// Offset returns the number of items skipped before the requested page.
func (q BookQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Matches reports whether b passes the search and genre filters.
func (q BookQuery) Matches(b *Book) bool {
	if q.Genre != "" && b.Genre != q.Genre {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	return strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.Author), needle) ||
		strings.Contains(strings.ToLower(b.Description), needle)
}

// Compare orders a and b by the query's sort field and direction.
// Ties fall back to creation time and then ID in the same direction.
func (q BookQuery) Compare(a, b *Book) int {
	var c int
	switch q.SortBy {
	case SortTitle:
		c = cmp.Compare(a.Title, b.Title)
	case SortAuthor:
		c = cmp.Compare(a.Author, b.Author)
	case SortPublishedYear:
		c = cmp.Compare(a.PublishedYear, b.PublishedYear)
	case SortAverageRating:
		c = cmp.Compare(a.AverageRating, b.AverageRating)
	}
	if c == 0 {
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if c == 0 {
		c = cmp.Compare(a.ID, b.ID)
	}
	if q.SortOrder == SortDesc {
		return -c
	}
	return c
}

// BookPage is one page of a book listing.
type BookPage struct {
	Books []*Book
	Total int
}
