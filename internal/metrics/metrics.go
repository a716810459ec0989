// Package metrics holds the Prometheus collectors for the book review server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LLM call outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookreview_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookreview_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// LLM
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreview_llm_requests_total",
			Help: "Total number of LLM chat completions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookreview_llm_request_duration_seconds",
			Help:    "LLM chat completion latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"operation"},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookreview_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreview_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Domain
	ReviewsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreview_reviews_created_total",
			Help: "Total number of reviews created, by sentiment",
		},
		[]string{"sentiment"},
	)

	RatingRecomputes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookreview_rating_recomputes_total",
			Help: "Total number of book rating aggregate recomputations",
		},
	)
)

// RecordHTTPRequest records a finished HTTP request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLLMRequest records one chat completion attempt.
func RecordLLMRequest(operation, outcome string, duration time.Duration) {
	LLMRequestsTotal.WithLabelValues(operation, outcome).Inc()
	if outcome != OutcomeRejected {
		LLMRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// SetCircuitBreakerState publishes a breaker's numeric state.
func SetCircuitBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordCircuitBreakerTransition counts a state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordReviewCreated counts a new review by its sentiment label.
func RecordReviewCreated(sentiment string) {
	ReviewsCreated.WithLabelValues(sentiment).Inc()
}

// RecordRatingRecompute counts an aggregate recomputation.
func RecordRatingRecompute() {
	RatingRecomputes.Inc()
}
