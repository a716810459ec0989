package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/service"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/ai/recommendations",
		Summary:     "Book recommendations",
		Description: "Suggests books from the caller's reviews. Falls back to the top-rated catalogue for new readers and returns an empty list when the model is unavailable",
		Tags:        []string{"AI"},
		Security:    protected,
	}, s.handleGetRecommendations)
}

// RecommendationsInput contains parameters for recommendations.
type RecommendationsInput struct {
	Limit int `query:"limit" default:"5" doc:"Number of recommendations, 1 to 20"`
}

// RecommendationsOutput wraps recommendations for huma.
type RecommendationsOutput struct {
	Body *service.RecommendationResponse
}

func (s *Server) handleGetRecommendations(ctx context.Context, input *RecommendationsInput) (*RecommendationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Recommendation.Recommend(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}
	return &RecommendationsOutput{Body: resp}, nil
}
