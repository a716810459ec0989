package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/api/dto"
	"github.com/bookreview/bookreview-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookStats",
		Method:      http.MethodGet,
		Path:        "/api/books/{id}/stats",
		Summary:     "Book statistics",
		Description: "Returns the rating and sentiment histograms of a book's reviews",
		Tags:        []string{"Stats"},
	}, s.handleGetBookStats)
}

// BookStatsOutput wraps book statistics for huma.
type BookStatsOutput struct {
	Body *domain.BookStats
}

func (s *Server) handleGetBookStats(ctx context.Context, input *dto.IDParam) (*BookStatsOutput, error) {
	stats, err := s.services.Stats.BookStats(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookStatsOutput{Body: stats}, nil
}
