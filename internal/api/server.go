// Package api exposes the book review services over HTTP.
package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookreview/bookreview-server/internal/config"
	"github.com/bookreview/bookreview-server/internal/http/response"
	"github.com/bookreview/bookreview-server/internal/metrics"
)

const (
	apiTitle   = "Book Review Platform API"
	apiVersion = "1.0.0"
)

// Server is the HTTP server for the book review API.
type Server struct {
	api          huma.API
	router       *chi.Mux
	services     *Services
	logger       *slog.Logger
	shape        response.Shape
	loginLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, services *Services, logger *slog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		services: services,
		logger:   logger,
		shape:    response.ShapeFor(cfg.Server.Envelope),
	}

	s.setupMiddleware(cfg)
	s.setupAPI()
	s.registerRoutes()

	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		s.router.Handle(path, promhttp.Handler())
	}

	return s
}

func (s *Server) setupMiddleware(cfg *config.Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.StripSlashes)
	s.router.Use(middleware.Compress(5))
	s.router.Use(metrics.Middleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Total-Count", "X-Page", "X-Page-Size", "X-Has-More"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if perMinute := cfg.Auth.RateLimitPerMinute; perMinute > 0 {
		s.router.Use(onPrefix("/api/auth/", windowLimit(perMinute, time.Minute, s.shape, s.logger)))

		if burst := cfg.Auth.RateLimitBurst; burst > 0 {
			s.loginLimiter = NewRateLimiter(perMinute, time.Minute, burst)
			s.router.Use(onPrefix("/api/auth/login", RateLimitMiddleware(s.loginLimiter, s.shape, s.logger)))
		}
	}

	s.router.Use(authMiddleware(s.services.Auth))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, s.shape, "Not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.shape, "Method not allowed", s.logger)
	})
}

func (s *Server) setupAPI() {
	humaConfig := huma.DefaultConfig(apiTitle, apiVersion)
	humaConfig.Info.Description = "Books, reviews, ratings and LLM-assisted recommendations."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT or PASETO",
		},
	}
	humaConfig.Formats["application/json"] = jsonFormat
	humaConfig.Formats["json"] = jsonFormat
	humaConfig.Transformers = append(humaConfig.Transformers, BodyTransformer(s.shape))

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(s.logger)
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
	s.registerStatsRoutes()
	s.registerGenreRoutes()
	s.registerRecommendationRoutes()
	s.registerSearchRoutes()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, used to inspect the generated OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server's middleware.
func (s *Server) Close() {
	if s.loginLimiter != nil {
		s.loginLimiter.Stop()
	}
}

// jsonFormat encodes request and response bodies with goccy/go-json.
var jsonFormat = huma.Format{
	Marshal: func(w io.Writer, v any) error {
		return json.NewEncoder(w).Encode(v)
	},
	Unmarshal: json.Unmarshal,
}

// protected marks an operation as requiring a bearer token in the OpenAPI document.
var protected = []map[string][]string{{"bearer": {}}}
