package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New(cause, http.StatusBadGateway, "upstream")

	assert.Equal(t, "upstream: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	var target *AppError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Equal(t, http.StatusBadGateway, target.Status)
}

func TestWrapRedis(t *testing.T) {
	assert.Nil(t, WrapRedis(nil))

	var appErr *AppError
	notFound := WrapRedis(redis.Nil)
	assert.True(t, errors.As(notFound, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)

	other := WrapRedis(errors.New("connection refused"))
	assert.True(t, errors.As(other, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain text", errors.New("Error: rate limit exceeded"), true},
		{"upper case text", errors.New("RATE LIMIT reached"), true},
		{"unrelated", errors.New("connection reset"), false},
		{"search 429", WrapSearch(errors.New("slow down"), http.StatusTooManyRequests), true},
		{"search 500", WrapSearch(errors.New("oops"), http.StatusInternalServerError), false},
		{"genai 429", fmt.Errorf("generate: %w", genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimit(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindRateLimited, Classify(KindGenerationFailed, errors.New("Error: rate limit exceeded")))
	assert.Equal(t, KindGenerationFailed, Classify(KindGenerationFailed, errors.New("timeout")))
	assert.Equal(t, "rate_limited", KindRateLimited.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
