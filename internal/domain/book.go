// Package domain contains the core entities of the book review platform.
package domain

import "time"

// Book is a catalogue entry owned by the user who added it.
// AverageRating and TotalReviews are derived from the book's reviews and only
// written by the rating aggregator.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	Genre         string    `json:"genre"`
	PublishedYear int       `json:"published_year"`
	AddedBy       string    `json:"added_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
}

// IsOwnedBy reports whether userID added the book.
func (b *Book) IsOwnedBy(userID string) bool {
	return b.AddedBy == userID
}

// Descriptor renders the book as "Title by Author".
func (b *Book) Descriptor() string {
	return b.Title + " by " + b.Author
}

// BookPatch carries the fields of a partial book update. Nil fields are left unchanged.
type BookPatch struct {
	Title         *string
	Author        *string
	Description   *string
	Genre         *string
	PublishedYear *int
}

// IsEmpty reports whether the patch changes nothing.
func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Description == nil && p.Genre == nil && p.PublishedYear == nil
}

// Apply copies the set fields onto b and reports whether anything changed.
func (p BookPatch) Apply(b *Book) bool {
	changed := false
	if p.Title != nil && *p.Title != b.Title {
		b.Title = *p.Title
		changed = true
	}
	if p.Author != nil && *p.Author != b.Author {
		b.Author = *p.Author
		changed = true
	}
	if p.Description != nil && *p.Description != b.Description {
		b.Description = *p.Description
		changed = true
	}
	if p.Genre != nil && *p.Genre != b.Genre {
		b.Genre = *p.Genre
		changed = true
	}
	if p.PublishedYear != nil && *p.PublishedYear != b.PublishedYear {
		b.PublishedYear = *p.PublishedYear
		changed = true
	}
	return changed
}
