package api

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/service"
)

func TestSignup(t *testing.T) {
	ts := setupTestServer(t)

	auth := ts.signup(t, "Ada", "Ada@Example.com ")
	assert.NotEmpty(t, auth.AccessToken)
	assert.Equal(t, "bearer", auth.TokenType)
	assert.Equal(t, int64(3600), auth.ExpiresIn)
	require.NotNil(t, auth.User)
	assert.Equal(t, "ada@example.com", auth.User.Email)
	assert.Equal(t, "Ada", auth.User.Name)

	t.Run("duplicate email", func(t *testing.T) {
		resp := ts.api.Post("/api/auth/signup", map[string]any{
			"name": "Other", "email": "ada@example.com", "password": "x",
		})
		require.Equal(t, http.StatusBadRequest, resp.Code)

		body := decodeError(t, resp)
		assert.Equal(t, "ALREADY_EXISTS", body.Code)
		assert.Equal(t, "User with this email already exists", body.Detail)
	})

	t.Run("invalid email", func(t *testing.T) {
		resp := ts.api.Post("/api/auth/signup", map[string]any{
			"name": "Bad", "email": "not-an-email", "password": "x",
		})
		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
	})

	t.Run("missing field", func(t *testing.T) {
		resp := ts.api.Post("/api/auth/signup", map[string]any{"email": "x@example.com"})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION", body.Code)
		assert.NotEmpty(t, body.Details)
	})
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "Ada", "ada@example.com")

	tests := []struct {
		name     string
		email    string
		password string
		status   int
	}{
		{"correct credentials", "ada@example.com", "password123", http.StatusOK},
		{"email is case-insensitive", "ADA@example.com", "password123", http.StatusOK},
		{"wrong password", "ada@example.com", "wrong", http.StatusUnauthorized},
		{"unknown email", "nobody@example.com", "password123", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/auth/login", map[string]any{
				"email": tt.email, "password": tt.password,
			})
			require.Equal(t, tt.status, resp.Code, resp.Body.String())

			if tt.status == http.StatusOK {
				assert.NotEmpty(t, decodeBody[service.AuthResponse](t, resp).AccessToken)
				return
			}
			body := decodeError(t, resp)
			assert.Equal(t, "INVALID_CREDENTIALS", body.Code)
			assert.Equal(t, "Invalid email or password", body.Detail)
		})
	}
}

func TestMe(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.signup(t, "Ada", "ada@example.com")

	t.Run("valid token", func(t *testing.T) {
		resp := ts.api.Get("/api/auth/me", bearer(auth.AccessToken))
		require.Equal(t, http.StatusOK, resp.Code)

		user := decodeBody[service.UserResponse](t, resp)
		assert.Equal(t, auth.User.ID, user.ID)
		assert.Equal(t, "ada@example.com", user.Email)
	})

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "bookreview-server",
		Subject:   auth.User.ID,
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString(bytes.Repeat([]byte{0x24}, 32))
	require.NoError(t, err)

	ghost, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "bookreview-server",
		Subject:   "user-deleted",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(bytes.Repeat([]byte{0x24}, 32))
	require.NoError(t, err)

	rejected := []struct {
		name    string
		headers []any
		code    string
		message string
	}{
		{"no token", nil, "UNAUTHORIZED", "Authentication required"},
		{"wrong scheme", []any{"Authorization: Basic abc"}, "UNAUTHORIZED", "Authentication required"},
		{"garbage token", []any{bearer("not-a-token")}, "UNAUTHORIZED", "Invalid token"},
		{"expired token", []any{bearer(expired)}, "TOKEN_EXPIRED", "Token expired"},
		{"unknown user", []any{bearer(ghost)}, "UNAUTHORIZED", "User not found"},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/auth/me", tt.headers...)
			require.Equal(t, http.StatusUnauthorized, resp.Code)

			body := decodeError(t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Detail)
		})
	}
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t, func(o *testServerOptions) {
		o.rateLimit = 3
	})

	for range 3 {
		resp := ts.api.Post("/api/auth/login", map[string]any{"email": "a@example.com", "password": "x"})
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.api.Post("/api/auth/login", map[string]any{"email": "a@example.com", "password": "x"})
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, resp).Code)

	// Other routes are not throttled.
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/books").Code)
}

func TestLoginBurstLimit(t *testing.T) {
	ts := setupTestServer(t, func(o *testServerOptions) {
		o.rateLimit = 60
		o.burst = 2
	})

	for range 2 {
		resp := ts.api.Post("/api/auth/login", map[string]any{"email": "a@example.com", "password": "x"})
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.api.Post("/api/auth/login", map[string]any{"email": "a@example.com", "password": "x"})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)

	// Signup shares the window limit but not the login bucket.
	ts.signup(t, "Ada", "ada@example.com")
}
