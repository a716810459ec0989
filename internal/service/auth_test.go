package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/auth"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

func TestSignup(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	resp, err := ts.auth.Signup(ctx, SignupRequest{
		Name:     "Ada Reader",
		Email:    "  Ada@Example.COM ",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(time.Hour.Seconds()), resp.ExpiresIn)
	assert.Equal(t, "Ada Reader", resp.User.Name)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Contains(t, resp.User.ID, "user-")

	claims, err := ts.tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.Subject)

	stored, err := ts.store.GetUser(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ts := setupServices(t)
	ts.signup(t, "First", "dup@example.com")

	_, err := ts.auth.Signup(context.Background(), SignupRequest{
		Name:     "Second",
		Email:    "DUP@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.Equal(t, "User with this email already exists", err.Error())
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   SignupRequest
		field string
	}{
		{"missing name", SignupRequest{Email: "a@example.com", Password: "pw"}, "name"},
		{"blank name", SignupRequest{Name: "   ", Email: "a@example.com", Password: "pw"}, "name"},
		{"bad email", SignupRequest{Name: "A", Email: "not-an-email", Password: "pw"}, "email"},
		{"missing password", SignupRequest{Name: "A", Email: "a@example.com"}, "password"},
	}

	ts := setupServices(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.auth.Signup(context.Background(), tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Contains(t, domainErr.Details, tt.field)
		})
	}
}

func TestLogin(t *testing.T) {
	ts := setupServices(t)
	user := ts.signup(t, "Reader", "reader@example.com")
	ctx := context.Background()

	t.Run("correct password", func(t *testing.T) {
		resp, err := ts.auth.Login(ctx, LoginRequest{Email: "Reader@Example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.Equal(t, TokenType, resp.TokenType)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := ts.auth.Login(ctx, LoginRequest{Email: "reader@example.com", Password: "nope"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
		assert.Equal(t, "Invalid email or password", err.Error())
	})

	t.Run("unknown email gives the same error", func(t *testing.T) {
		_, err := ts.auth.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "password123"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
		assert.Equal(t, "Invalid email or password", err.Error())
	})
}

func TestVerifyToken(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	resp, err := ts.auth.Signup(ctx, SignupRequest{Name: "Reader", Email: "r@example.com", Password: "password123"})
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		user, err := ts.auth.VerifyToken(ctx, resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, user.ID)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ts.auth.VerifyToken(ctx, "not-a-token")
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
		assert.Equal(t, "Invalid token", err.Error())
	})

	t.Run("signed with another key", func(t *testing.T) {
		other, err := auth.NewTokenIssuer(auth.FormatJWT, bytes.Repeat([]byte{0x07}, 32), time.Hour)
		require.NoError(t, err)
		token, _, err := other.Issue(resp.User.ID)
		require.NoError(t, err)

		_, err = ts.auth.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		token, _, err := ts.tokens.Issue("user-missing")
		require.NoError(t, err)

		_, err = ts.auth.VerifyToken(ctx, token)
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
		assert.Equal(t, "User not found", err.Error())
	})
}

func TestCurrentUser(t *testing.T) {
	ts := setupServices(t)
	user := ts.signup(t, "Reader", "me@example.com")

	got, err := ts.auth.CurrentUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "me@example.com", got.Email)

	_, err = ts.auth.CurrentUser(context.Background(), "user-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
