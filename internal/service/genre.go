package service

import (
	"context"
	"fmt"

	"github.com/bookreview/bookreview-server/internal/store"
)

// GenreListResponse lists the distinct genres in the catalogue.
type GenreListResponse struct {
	Genres []string `json:"genres"`
}

// GenreService exposes the genres in use.
type GenreService struct {
	store store.Store
}

// NewGenreService creates a new genre service.
func NewGenreService(store store.Store) *GenreService {
	return &GenreService{store: store}
}

// ListGenres returns the sorted, distinct, non-empty genres of all books.
func (s *GenreService) ListGenres(ctx context.Context) (*GenreListResponse, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	if genres == nil {
		genres = []string{}
	}
	return &GenreListResponse{Genres: genres}, nil
}
