package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// SearchErrorMessage describes web search failures.
	SearchErrorMessage = "recipe search failed"
	// ModelErrorMessage describes language model failures.
	ModelErrorMessage = "language model call failed"
)

var (
	// ErrNoResults is returned when a retrieval produced nothing usable.
	ErrNoResults = errors.New("no useful recipe information found")
	// ErrTooShort is returned when a generated recipe is implausibly short.
	ErrTooShort = errors.New("generated recipe seems incomplete")
	// ErrUnsupportedShape is returned for search payloads that are neither
	// an object, a list nor a string.
	ErrUnsupportedShape = errors.New("unsupported search response shape")
	// ErrEmptyDesire is recorded when the turn carries no desire to act on.
	ErrEmptyDesire = errors.New("no desire provided")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapSearch wraps a search provider error. A 429 from the provider keeps
// its status so callers can tell rate limiting apart.
func WrapSearch(err error, status int) error {
	if err == nil {
		return nil
	}
	if status == 0 {
		status = http.StatusBadGateway
	}
	return New(err, status, SearchErrorMessage)
}

// WrapModel wraps a language model error.
func WrapModel(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, ModelErrorMessage)
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
