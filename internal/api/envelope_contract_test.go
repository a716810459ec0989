package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/http/response"
)

// getFixturePath returns the path to a directory of shared body fixtures.
// Client tests embed matching JSON strings to verify parsing compatibility.
func getFixturePath(t *testing.T, dir string) string {
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get caller info")

	// internal/api -> repo root
	root := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(root, "testdata", dir)
}

func loadFixture(t *testing.T, dir, name string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(getFixturePath(t, dir), name))
	require.NoError(t, err, "contract tests require shared fixtures")

	var expected map[string]any
	require.NoError(t, json.Unmarshal(raw, &expected))
	return expected
}

// transformRaw runs BodyTransformer and returns the encoded body.
func transformRaw(t *testing.T, shape response.Shape, status string, v any) []byte {
	t.Helper()
	result, err := BodyTransformer(shape)(nil, status, v)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	return raw
}

// transform returns the enveloped JSON the client would see.
func transform(t *testing.T, status string, v any) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(transformRaw(t, response.Enveloped, status, v), &out))
	return out
}

// transformBare returns the bare JSON the client would see.
func transformBare(t *testing.T, status string, v any) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(transformRaw(t, response.Bare, status, v), &out))
	return out
}

func assertNoExtraFields(t *testing.T, expected, actual map[string]any) {
	t.Helper()
	for key := range actual {
		assert.Contains(t, expected, key, "Server output contains unexpected field: %s", key)
	}
}

func TestEnvelopeContract_SuccessMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "envelope", "success.json")

	out := transform(t, "200", map[string]string{"id": "test-123", "name": "Test Item"})

	assert.Equal(t, expected, out)
}

func TestEnvelopeContract_SuccessNullDataMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "envelope", "success_null_data.json")

	out := transform(t, "204", nil)

	assert.Equal(t, expected["v"], out["v"])
	assert.Equal(t, expected["success"], out["success"])
	assertNoExtraFields(t, expected, out)
}

func TestEnvelopeContract_SimpleErrorMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "envelope", "error_simple.json")

	out := transform(t, "404", &APIError{status: http.StatusNotFound, Code: "NOT_FOUND", Message: "Resource not found"})

	assert.Equal(t, expected, out)
	assert.IsType(t, "", out["error"], "Error must be a string")
}

func TestEnvelopeContract_DetailedErrorMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "envelope", "error_detailed.json")

	out := transform(t, "409", &APIError{
		status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "Entity already exists",
		Details: map[string]string{"existing_id": "abc-123"},
	})

	assert.Equal(t, expected, out)
}

func TestBodyTransformer_EnvelopedOtherErrors(t *testing.T) {
	t.Run("huma status error", func(t *testing.T) {
		out := transform(t, "401", huma.Error401Unauthorized("Authentication required"))
		assert.Equal(t, false, out["success"])
		assert.Equal(t, "UNAUTHORIZED", out["code"])
	})

	t.Run("plain error is not leaked", func(t *testing.T) {
		out := transform(t, "500", errors.New("disk on fire"))
		assert.Equal(t, "INTERNAL", out["code"])
		assert.Equal(t, "Internal server error", out["error"])
	})
}

// The version field is named exactly "v"; clients break silently otherwise.
func TestEnvelopeContract_VersionFieldName(t *testing.T) {
	out := transform(t, "200", nil)

	assert.Contains(t, out, "v")
	assert.NotContains(t, out, "version")
	assert.NotContains(t, out, "Version")
}

func TestBareContract_SuccessMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "bare", "success.json")

	out := transformBare(t, "200", map[string]string{"id": "test-123", "name": "Test Item"})

	assert.Equal(t, expected, out)
}

func TestBareContract_SuccessKeepsArraysAndNull(t *testing.T) {
	assert.JSONEq(t, `["Fantasy","Mystery"]`, string(transformRaw(t, response.Bare, "200", []string{"Fantasy", "Mystery"})))
	assert.JSONEq(t, `null`, string(transformRaw(t, response.Bare, "204", nil)))
}

func TestBareContract_SimpleErrorMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "bare", "error_simple.json")

	out := transformBare(t, "404", &APIError{status: http.StatusNotFound, Code: "NOT_FOUND", Message: "Resource not found"})

	assert.Equal(t, expected, out)
	assert.IsType(t, "", out["detail"], "Detail must be a string")
}

func TestBareContract_DetailedErrorMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "bare", "error_detailed.json")

	out := transformBare(t, "409", &APIError{
		status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "Entity already exists",
		Details: map[string]string{"existing_id": "abc-123"},
	})

	assert.Equal(t, expected, out)
}

func TestBodyTransformer_BareOtherErrors(t *testing.T) {
	t.Run("huma status error", func(t *testing.T) {
		out := transformBare(t, "401", huma.Error401Unauthorized("Authentication required"))
		assert.Equal(t, "UNAUTHORIZED", out["code"])
		assert.Equal(t, "Authentication required", out["detail"])
		assert.NotContains(t, out, "success")
	})

	t.Run("plain error is not leaked", func(t *testing.T) {
		out := transformBare(t, "500", errors.New("disk on fire"))
		assert.Equal(t, map[string]any{"detail": "Internal server error", "code": "INTERNAL"}, out)
	})

	t.Run("bodies already shaped pass through", func(t *testing.T) {
		out := transformBare(t, "429", response.ErrorBody{Detail: "Slow down", Code: "RATE_LIMITED"})
		assert.Equal(t, map[string]any{"detail": "Slow down", "code": "RATE_LIMITED"}, out)
	})
}
