package api

import (
	"github.com/bookreview/bookreview-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth           *service.AuthService
	Book           *service.BookService
	Review         *service.ReviewService
	Stats          *service.StatsService
	Genre          *service.GenreService
	Recommendation *service.RecommendationService
	Search         *service.SearchService // nil-safe; disabled index answers 404
}
