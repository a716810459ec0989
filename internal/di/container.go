// Package di provides dependency injection configuration for the book review server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookreview/bookreview-server/internal/ai"
	"github.com/bookreview/bookreview-server/internal/auth"
	"github.com/bookreview/bookreview-server/internal/config"
	"github.com/bookreview/bookreview-server/internal/di/providers"
	"github.com/bookreview/bookreview-server/internal/logger"
	"github.com/bookreview/bookreview-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenIssuer)

	// Language model
	do.Provide(injector, providers.ProvideChatClient)
	do.Provide(injector, providers.ProvideSentimentClassifier)
	do.Provide(injector, providers.ProvideRecommendationEngine)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideRatingAggregator)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideGenreService)
	do.Provide(injector, providers.ProvideRecommendationService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// Provider errors surface here instead of panicking.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[auth.TokenIssuer](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.ChatClientHandle](injector)
	_ = do.MustInvoke[*ai.SentimentClassifier](injector)
	_ = do.MustInvoke[*ai.RecommendationEngine](injector)

	// Business services
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.GenreService](injector)
	_ = do.MustInvoke[*service.RecommendationService](injector)

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
