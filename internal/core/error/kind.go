package errx

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Kind enumerates the recoverable failures a recipe run can record.
type Kind int

const (
	KindNone Kind = iota
	KindEmptyDesire
	KindNoResults
	KindRetrievalFailed
	KindGenerationFailed
	KindTooShort
	KindRateLimited
)

var kindNames = map[Kind]string{
	KindNone:             "none",
	KindEmptyDesire:      "empty_desire",
	KindNoResults:        "no_results",
	KindRetrievalFailed:  "retrieval_failed",
	KindGenerationFailed: "generation_failed",
	KindTooShort:         "too_short",
	KindRateLimited:      "rate_limited",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

const rateLimitMarker = "rate limit"

// IsRateLimit reports whether err signals provider throttling: an HTTP 429
// carried by AppError or genai.APIError, or error text mentioning a rate limit.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status == http.StatusTooManyRequests {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && apiErrPtr.Code == http.StatusTooManyRequests {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), rateLimitMarker)
}

// Classify returns the kind to record for err, promoting throttling
// failures to KindRateLimited.
func Classify(fallback Kind, err error) Kind {
	if IsRateLimit(err) {
		return KindRateLimited
	}
	return fallback
}
