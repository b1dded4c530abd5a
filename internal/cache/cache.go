// Package cache provides a Redis-backed cache for ranked search results.
// Keys are hashes of the normalised query plus limit, so term order and
// casing do not fragment the cache, and singleflight collapses concurrent
// misses for the same key into one computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/daye10/textsearch/internal/search"
	"github.com/daye10/textsearch/pkg/config"
	"github.com/daye10/textsearch/pkg/metrics"
	pkgredis "github.com/daye10/textsearch/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// QueryCache caches BM25 result lists.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		logger:  slog.Default().With("component", "query-cache"),
		metrics: m,
	}
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Get returns the cached results for (query, limit), if any.
func (c *QueryCache) Get(ctx context.Context, query string, limit int) ([]search.ScoredDoc, bool) {
	key := c.buildKey(query, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return nil, false
	}
	var results []search.ScoredDoc
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	return results, true
}

// Set stores the results for (query, limit) with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, query string, limit int, results []search.ScoredDoc) {
	key := c.buildKey(query, limit)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached results, or runs computeFn exactly once
// per key across concurrent callers, caching its output. The boolean
// reports whether the answer came from the cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	limit int,
	computeFn func() ([]search.ScoredDoc, error),
) ([]search.ScoredDoc, bool, error) {
	if results, ok := c.Get(ctx, query, limit); ok {
		return results, true, nil
	}
	key := c.buildKey(query, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.Get(ctx, query, limit); ok {
			return results, nil
		}
		results, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, limit, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]search.ScoredDoc), false, nil
}

// Invalidate drops every cached result. Called after an index rebuild so
// stale rankings are not served against the new snapshot.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns lifetime hit and miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string, limit int) string {
	raw := fmt.Sprintf("%s:limit=%d", NormalizeQuery(query), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// NormalizeQuery lowercases the query and sorts its terms so logically
// identical queries share a cache entry.
func NormalizeQuery(query string) string {
	terms := strings.Fields(strings.ToLower(query))
	sort.Strings(terms)
	return strings.Join(terms, ",")
}
