package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chef-innovativo/server/internal/agent/model"
	errx "github.com/chef-innovativo/server/internal/core/error"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

// CachedSearcher serves repeated queries from Redis. Cache failures are
// logged and never fail the search.
type CachedSearcher struct {
	next model.RecipeSearcher
	rdb  redis.Cmdable
	ttl  time.Duration
}

func NewCachedSearcher(next model.RecipeSearcher, rdb redis.Cmdable, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{next: next, rdb: rdb, ttl: ttl}
}

func (c *CachedSearcher) cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "search:" + hex.EncodeToString(sum[:])
}

func (c *CachedSearcher) Search(ctx context.Context, query string) (json.RawMessage, error) {
	key := c.cacheKey(query)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		logx.Debug().Str("key", key).Msg("search cache hit")
		return json.RawMessage(cached), nil
	case !errors.Is(err, redis.Nil):
		logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Msg("search cache read failed")
	}

	raw, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := c.rdb.Set(ctx, key, []byte(raw), c.ttl).Err(); err != nil {
		logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Msg("search cache write failed")
	}
	return raw, nil
}

var _ model.RecipeSearcher = (*CachedSearcher)(nil)
var _ model.RecipeSearcher = (*TavilyClient)(nil)
