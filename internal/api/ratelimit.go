package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/bookreview/bookreview-server/internal/http/response"
	"github.com/bookreview/bookreview-server/internal/ratelimit"
)

const rateLimitMessage = "Too many requests. Please try again later."

// RateLimiter is a per-client token bucket.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a limiter allowing ratePerInterval requests per interval
// with bursts of up to burst requests.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// RateLimitMiddleware rejects requests by client IP once the bucket is empty.
func RateLimitMiddleware(limiter *RateLimiter, shape response.Shape, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				response.TooManyRequests(w, shape, rateLimitMessage, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// windowLimit caps requests per client IP over a sliding window.
func windowLimit(requests int, window time.Duration, shape response.Shape, logger *slog.Logger) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("rate limit window exceeded", "ip", clientIP(r), "path", r.URL.Path)
			response.TooManyRequests(w, shape, rateLimitMessage, logger)
		}),
	)
}

// onPrefix applies mw only to requests whose path starts with prefix.
func onPrefix(prefix string, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the request's remote IP. RealIP middleware has already
// replaced RemoteAddr with the forwarded address when one was sent.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
