package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chef-innovativo/server/internal/agent/model"
	errx "github.com/chef-innovativo/server/internal/core/error"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *TavilyClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewTavilyClient(model.SearchConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		MaxResults: 5,
		Depth:      "basic",
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNewTavilyClientRequiresKey(t *testing.T) {
	_, err := NewTavilyClient(model.SearchConfig{})
	assert.Error(t, err)
}

func TestTavilySearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body tavilyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pasta recipe cooking instructions", body.Query)
		assert.Equal(t, 5, body.MaxResults)
		assert.Equal(t, "basic", body.SearchDepth)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"T","content":"C"}]}`))
	})

	raw, err := c.Search(context.Background(), BuildQuery("pasta"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[{"title":"T","content":"C"}]}`, string(raw))
}

func TestTavilySearchRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Search(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errx.IsRateLimit(err))
	assert.Equal(t, errx.KindRateLimited, errx.Classify(errx.KindRetrievalFailed, err))
}

func TestTavilySearchServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Search(context.Background(), "q")
	require.Error(t, err)
	assert.False(t, errx.IsRateLimit(err))

	var appErr *errx.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

type countingSearcher struct {
	calls int
	raw   json.RawMessage
	err   error
}

func (s *countingSearcher) Search(ctx context.Context, query string) (json.RawMessage, error) {
	s.calls++
	return s.raw, s.err
}

func TestCachedSearcher(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	next := &countingSearcher{raw: json.RawMessage(`["hit"]`)}
	c := NewCachedSearcher(next, rdb, time.Hour)
	ctx := context.Background()

	first, err := c.Search(ctx, "Pasta recipe")
	require.NoError(t, err)
	second, err := c.Search(ctx, "  pasta RECIPE ")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.JSONEq(t, string(first), string(second))
	assert.True(t, mr.Exists(c.cacheKey("pasta recipe")))
	assert.Equal(t, time.Hour, mr.TTL(c.cacheKey("pasta recipe")))
}

func TestCachedSearcherDoesNotCacheErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	next := &countingSearcher{err: errors.New("down")}
	c := NewCachedSearcher(next, rdb, time.Hour)

	_, err := c.Search(context.Background(), "q")
	assert.Error(t, err)
	_, err = c.Search(context.Background(), "q")
	assert.Error(t, err)
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, mr.Keys())
}

func TestCachedSearcherSurvivesRedisOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	next := &countingSearcher{raw: json.RawMessage(`"ok"`)}
	raw, err := NewCachedSearcher(next, rdb, time.Hour).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(raw))
}
