package store

import (
	"fmt"
	"net/http"
)

// Error is a persistence error carrying the HTTP status it most naturally maps to.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Generic sentinels returned by Entity.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}
)

// Entity-specific sentinels. Each wraps the generic one, so
// errors.Is(ErrBookNotFound, ErrNotFound) holds.
var (
	ErrUserNotFound   = &Error{Code: http.StatusNotFound, Message: "user not found", Err: ErrNotFound}
	ErrBookNotFound   = &Error{Code: http.StatusNotFound, Message: "book not found", Err: ErrNotFound}
	ErrReviewNotFound = &Error{Code: http.StatusNotFound, Message: "review not found", Err: ErrNotFound}
	ErrEmailExists    = &Error{Code: http.StatusConflict, Message: "email already registered", Err: ErrAlreadyExists}
	ErrReviewExists   = &Error{Code: http.StatusConflict, Message: "user has already reviewed this book", Err: ErrAlreadyExists}
)
