// Package search provides full-text search over the book catalogue using Bleve.
package search

import (
	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/genre"
)

// SearchDocument is the indexed form of a book.
type SearchDocument struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Description   string  `json:"description,omitempty"`
	Genre         string  `json:"genre,omitempty"`
	GenreSlug     string  `json:"genre_slug,omitempty"`
	PublishedYear int     `json:"published_year,omitempty"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
	CreatedAt     int64   `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map keyed by the mapped field names.
// Bleve would otherwise use the capitalised Go field names.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":             d.ID,
		"title":          d.Title,
		"author":         d.Author,
		"average_rating": d.AverageRating,
		"total_reviews":  d.TotalReviews,
		"created_at":     d.CreatedAt,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Genre != "" {
		m["genre"] = d.Genre
		m["genre_slug"] = d.GenreSlug
	}
	if d.PublishedYear > 0 {
		m["published_year"] = d.PublishedYear
	}
	return m
}

// BookToSearchDocument converts a domain Book to a SearchDocument.
func BookToSearchDocument(book *domain.Book) *SearchDocument {
	doc := &SearchDocument{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		Genre:         book.Genre,
		PublishedYear: book.PublishedYear,
		AverageRating: book.AverageRating,
		TotalReviews:  book.TotalReviews,
		CreatedAt:     book.CreatedAt.UnixMilli(),
	}
	if book.Genre != "" {
		doc.GenreSlug = genre.Canonical(book.Genre)
	}
	return doc
}
