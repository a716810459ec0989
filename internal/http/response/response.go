// Package response writes JSON response bodies for the API.
//
// Huma operations are shaped by the API's transformer; this package covers
// the plain net/http paths (router fallbacks and throttling) so that
// clients see one shape everywhere. Bodies are bare by default: data is
// written as-is and errors as {"detail", "code", "details"}. The Enveloped
// shape wraps both in a versioned Envelope instead.
package response

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

// Version is the envelope schema version sent in the "v" field.
const Version = 1

// Shape selects how bodies are written.
type Shape int

const (
	// Bare writes data unchanged and errors as ErrorBody.
	Bare Shape = iota
	// Enveloped wraps data and errors in Envelope.
	Enveloped
)

// ShapeFor returns Enveloped when enveloped is true and Bare otherwise.
func ShapeFor(enveloped bool) Shape {
	if enveloped {
		return Enveloped
	}
	return Bare
}

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ErrorBody is the bare error body. Detail carries the client-facing message.
type ErrorBody struct {
	Detail  string `json:"detail"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Ok wraps data in a success envelope.
func Ok(data any) Envelope {
	return Envelope{V: Version, Success: true, Data: data}
}

// Fail builds an error envelope.
func Fail(code, message string, details any) Envelope {
	return Envelope{V: Version, Error: message, Code: code, Details: details}
}

// Success returns the body for a successful response carrying data.
func (s Shape) Success(data any) any {
	if s == Enveloped {
		return Ok(data)
	}
	return data
}

// Failure returns the body for an error response.
func (s Shape) Failure(code, message string, details any) any {
	if s == Enveloped {
		return Fail(code, message, details)
	}
	return ErrorBody{Detail: message, Code: code, Details: details}
}

// Write encodes body with the given status code.
func Write(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// Error writes an error body with the given status code.
func Error(w http.ResponseWriter, shape Shape, status int, message string, logger *slog.Logger) {
	Write(w, status, shape.Failure(string(codeForStatus(status)), message, nil), logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, shape Shape, message string, logger *slog.Logger) {
	Error(w, shape, http.StatusNotFound, message, logger)
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter, shape Shape, message string, logger *slog.Logger) {
	Error(w, shape, http.StatusMethodNotAllowed, message, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, shape Shape, message string, logger *slog.Logger) {
	Error(w, shape, http.StatusTooManyRequests, message, logger)
}

func codeForStatus(status int) domainerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domainerrors.CodeValidation
	case http.StatusUnauthorized:
		return domainerrors.CodeUnauthorized
	case http.StatusForbidden:
		return domainerrors.CodeForbidden
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusConflict:
		return domainerrors.CodeConflict
	case http.StatusTooManyRequests:
		return domainerrors.CodeRateLimited
	case http.StatusServiceUnavailable:
		return domainerrors.CodeUnavailable
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		return domainerrors.CodeInternal
	}
}

// CodeForStatus maps an HTTP status without a domain error to an error code.
func CodeForStatus(status int) string {
	return string(codeForStatus(status))
}
