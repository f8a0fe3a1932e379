// Package cache stores two-keyword search results in Redis. Concurrent
// misses for the same query share one computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/resilience"
)

const keyPrefix = "search:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	store   Store
	isMiss  func(error) bool
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache over store. isMiss tells a missing key apart from a
// store failure; m may be nil.
func New(store Store, isMiss func(error) bool, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		isMiss:  isMiss,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, key string) (*executor.SearchResult, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		switch {
		case c.isMiss(err):
		case errors.Is(err, resilience.ErrCircuitOpen):
			c.logger.Debug("cache bypassed", "key", key, "error", err)
		default:
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, key string, result *executor.SearchResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for the query against the index
// named indexID, or computes, stores and returns it. The boolean reports a
// cache hit. A computed result is stored under the index that actually
// answered it, so a result from a replaced index is never served for a
// newer one.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	indexID string,
	kw1, kw2 string,
	limit int,
	dedupe bool,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	key := BuildKey(indexID, kw1, kw2, limit, dedupe)
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, BuildKey(result.IndexID, kw1, kw2, limit, dedupe), result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

// Invalidate drops every cached query, returning how many were removed.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
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

// BuildKey derives the cache key for a query against one published index.
// Keyword order is significant because ties favour the first keyword.
func BuildKey(indexID, kw1, kw2 string, limit int, dedupe bool) string {
	raw := fmt.Sprintf("%s\x00%s\x00%s\x00limit=%d\x00dedupe=%t",
		indexID, tokenizer.FoldQuery(kw1), tokenizer.FoldQuery(kw2), limit, dedupe)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
