// Package cache implements the optional query-result cache
// (component L.1): a thin wrapper over go-redis that keys cached
// results by a deterministic hash of the normalized query.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vjayram/uask/internal/metrics"
	"github.com/vjayram/uask/internal/query"
)

// keyPrecision is the coordinate rounding applied before hashing: each
// coordinate is truncated to a multiple of 1e-4, so two queries whose
// locations fall in the same 1e-4 grid cell share a cache entry even if
// their float64 locations differ in the noise.
const keyPrecision = 1e-4

// Cache caches resolved query results in Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a Cache over an already-configured redis.Client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key returns the deterministic cache key for q. Positive/negative
// keyword sets are sorted so key order never affects the key.
func Key(q query.SpatialQuery) string {
	positive := sortedCopy(q.PositiveKeywords)
	negative := sortedCopy(q.NegativeKeywords)

	round := func(f float64) float64 { return float64(int64(f/keyPrecision)) * keyPrecision }

	h := sha1.New()
	fmt.Fprintf(h, "%.4f|%.4f|%v|%v|%d|%.4f|%.4f",
		round(q.Location.Lat), round(q.Location.Lon),
		positive, negative, q.K, q.LambdaFactor, q.EffectiveRadius())
	return "uask:query:" + hex.EncodeToString(h.Sum(nil))
}

func sortedCopy(words []string) []string {
	out := make([]string, len(words))
	copy(out, words)
	sort.Strings(out)
	return out
}

// Get returns the cached results for key, or ok=false on a miss or
// any Redis error (a cache failure is never fatal to the caller).
func (c *Cache) Get(ctx context.Context, key string) ([]query.Result, bool) {
	start := time.Now()
	raw, err := c.client.Get(ctx, key).Bytes()
	metrics.CacheOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CacheMisses.Inc()
		return nil, false
	}

	var results []query.Result
	if err := json.Unmarshal(raw, &results); err != nil {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return results, true
}

// Set stores results under key with the cache's configured TTL.
// Errors are swallowed; a failed write just means the next Get misses.
func (c *Cache) Set(ctx context.Context, key string, results []query.Result) {
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	start := time.Now()
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	metrics.CacheOperationDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
}
