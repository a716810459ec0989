package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/service"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/genres",
		Summary:     "List genres",
		Description: "Returns the distinct genres in the catalogue, sorted",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	// Older clients fetch genres from under /api/books; chi matches this
	// static segment ahead of /api/books/{id}.
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookGenres",
		Method:      http.MethodGet,
		Path:        "/api/books/genres",
		Summary:     "List genres (books alias)",
		Description: "Same as GET /api/genres",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)
}

// GenreListOutput wraps the genre list for huma.
type GenreListOutput struct {
	Body *service.GenreListResponse
}

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*GenreListOutput, error) {
	genres, err := s.services.Genre.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	return &GenreListOutput{Body: genres}, nil
}
