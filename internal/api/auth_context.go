package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// authKey is the context key for the request's authentication state.
const authKey ctxKey = "auth"

// authState is what the middleware learned from the Authorization header.
type authState struct {
	userID string
	err    error // why a presented token was rejected
}

// GetUserID returns the authenticated user ID from context.
// Returns 401 if no token was sent, or the token's own error if it was rejected.
func GetUserID(ctx context.Context) (string, error) {
	state, _ := ctx.Value(authKey).(authState)
	if state.err != nil {
		return "", state.err
	}
	if state.userID == "" {
		return "", huma.Error401Unauthorized("Authentication required")
	}
	return state.userID, nil
}

// setUserID stores the user ID in context.
func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, authKey, authState{userID: userID})
}

// setAuthError records a rejected token in context.
func setAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, authKey, authState{err: err})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, service.TokenType) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authMiddleware returns a middleware that validates Bearer tokens and stores user ID in context.
// Requests without a token continue anonymously; handlers use GetUserID to check authentication.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.VerifyToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r.WithContext(setAuthError(r.Context(), err)))
				return
			}

			next.ServeHTTP(w, r.WithContext(setUserID(r.Context(), user.ID)))
		})
	}
}
