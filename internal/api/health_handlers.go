package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "apiRoot",
		Method:      http.MethodGet,
		Path:        "/api",
		Summary:     "API root",
		Description: "Returns the API banner",
		Tags:        []string{"Health"},
	}, s.handleRoot)

	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// RootResponse is the API banner.
type RootResponse struct {
	Message string `json:"message" doc:"API name"`
}

// RootOutput wraps the banner for Huma.
type RootOutput struct {
	Body RootResponse
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string            `json:"status" doc:"Overall status"`
	Components map[string]string `json:"components,omitempty" doc:"Optional component states"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleRoot(_ context.Context, _ *struct{}) (*RootOutput, error) {
	return &RootOutput{Body: RootResponse{Message: apiTitle}}, nil
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	search := "disabled"
	if s.services.Search.Enabled() {
		search = "enabled"
	}

	return &HealthOutput{Body: HealthResponse{
		Status:     "ok",
		Components: map[string]string{"search": search},
	}}, nil
}
