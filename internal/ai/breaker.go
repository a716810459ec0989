package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/bookreview/bookreview-server/internal/metrics"
)

// BreakerConfig tunes when the breaker opens.
type BreakerConfig struct {
	Name         string
	MinRequests  uint32        // requests in the window before the ratio is considered
	FailureRatio float64       // opens at or above this ratio
	Interval     time.Duration // closed-state counting window
	Timeout      time.Duration // open duration before half-open
}

// DefaultBreakerConfig opens after at least 5 requests with 60% failures in a minute
// and probes again after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "llm",
		MinRequests:  5,
		FailureRatio: 0.6,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
	}
}

// BreakerClient wraps a ChatClient with a circuit breaker and records call metrics.
// While open, calls fail immediately with gobreaker.ErrOpenState.
type BreakerClient struct {
	next   ChatClient
	cb     *gobreaker.CircuitBreaker[string]
	name   string
	logger *slog.Logger
}

var _ ChatClient = (*BreakerClient)(nil)

// NewBreakerClient wraps next.
func NewBreakerClient(next ChatClient, cfg BreakerConfig, logger *slog.Logger) *BreakerClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	metrics.SetCircuitBreakerState(cfg.Name, stateToFloat(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logger.Warn("opening circuit breaker",
					"name", cfg.Name,
					"failures", counts.TotalFailures,
					"requests", counts.Requests,
				)
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state transition", "name", name, "from", from.String(), "to", to.String())
			metrics.SetCircuitBreakerState(name, stateToFloat(to))
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
		// A caller giving up says nothing about the endpoint's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerClient{next: next, cb: cb, name: cfg.Name, logger: logger}
}

// Complete forwards req through the breaker.
func (b *BreakerClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	start := time.Now()
	reply, err := b.cb.Execute(func() (string, error) {
		return b.next.Complete(ctx, req)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordLLMRequest(req.Operation, metrics.OutcomeRejected, 0)
	case err != nil:
		metrics.RecordLLMRequest(req.Operation, metrics.OutcomeFailure, time.Since(start))
	default:
		metrics.RecordLLMRequest(req.Operation, metrics.OutcomeSuccess, time.Since(start))
	}
	return reply, err
}

// State returns the breaker's current state.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
