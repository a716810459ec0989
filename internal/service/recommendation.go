package service

import (
	"context"

	"github.com/bookreview/bookreview-server/internal/ai"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

// Recommender produces book suggestions for a user. Implementations never fail.
type Recommender interface {
	Recommend(ctx context.Context, userID string, n int) []string
}

// RecommendationResponse is the body of GET /ai/recommendations.
type RecommendationResponse struct {
	Recommendations []string `json:"recommendations"`
}

// RecommendationService wraps the recommendation engine with request validation.
type RecommendationService struct {
	engine Recommender
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(engine Recommender) *RecommendationService {
	return &RecommendationService{engine: engine}
}

// Recommend returns up to limit suggestions; zero selects the default count.
func (s *RecommendationService) Recommend(ctx context.Context, userID string, limit int) (*RecommendationResponse, error) {
	if limit == 0 {
		limit = ai.DefaultRecommendations
	}
	if limit < 1 || limit > ai.MaxRecommendations {
		return nil, domainerrors.Validationf("limit must be between 1 and %d", ai.MaxRecommendations)
	}

	recs := s.engine.Recommend(ctx, userID, limit)
	if recs == nil {
		recs = []string{}
	}
	return &RecommendationResponse{Recommendations: recs}, nil
}
