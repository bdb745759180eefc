package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"slskseek/slskd"
)

const keyPrefix = "slskseek:responses:"

// ResponseCache keeps retrieved search responses in redis so repeated
// filter passes over the same search do not re-hit the daemon. Entries
// expire after the configured TTL; a search's responses only grow until
// the search completes, so staleness just means a slightly shorter list.
type ResponseCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewResponseCache(rdb *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached responses for the search, reporting whether an
// entry was present.
func (c *ResponseCache) Get(ctx context.Context, searchID string) ([]slskd.SearchResponse, bool, error) {
	val, err := c.rdb.Get(ctx, keyPrefix+searchID).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached responses: %w", err)
	}

	var responses []slskd.SearchResponse
	if err := json.Unmarshal(val, &responses); err != nil {
		return nil, false, fmt.Errorf("decoding cached responses: %w", err)
	}
	return responses, true, nil
}

// Set stores the responses for the search under the cache TTL.
func (c *ResponseCache) Set(ctx context.Context, searchID string, responses []slskd.SearchResponse) error {
	buf, err := json.Marshal(responses)
	if err != nil {
		return fmt.Errorf("encoding responses: %w", err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+searchID, buf, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching responses: %w", err)
	}
	return nil
}

// Invalidate drops the cached responses for the search, typically after
// the search is deleted from the daemon.
func (c *ResponseCache) Invalidate(ctx context.Context, searchID string) error {
	if err := c.rdb.Del(ctx, keyPrefix+searchID).Err(); err != nil {
		return fmt.Errorf("invalidating cached responses: %w", err)
	}
	return nil
}
