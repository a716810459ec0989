package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/search"
	"github.com/bookreview/bookreview-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/search",
		Summary:     "Search books",
		Description: "Full-text search over titles, authors, descriptions and genres with genre facets",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query     string  `query:"q" doc:"Search text; empty matches every book"`
	Genre     string  `query:"genre" doc:"Restrict to a genre"`
	MinRating float64 `query:"min_rating" doc:"Minimum average rating, 0 to 5"`
	SortBy    string  `query:"sort_by" enum:"relevance,rating,recent,year" default:"relevance" doc:"Result order"`
	Limit     int     `query:"limit" default:"20" doc:"Maximum hits (max 100)"`
	Offset    int     `query:"offset" minimum:"0" doc:"Hits to skip"`
}

// SearchOutput wraps search results for huma.
type SearchOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Search.Search(ctx, service.SearchRequest{
		Query:     input.Query,
		Genre:     input.Genre,
		MinRating: input.MinRating,
		SortBy:    input.SortBy,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
