package cache

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/resilience"
)

type guardedStore struct {
	store   Store
	breaker *resilience.Breaker
}

// Guard routes every store call through breaker, so an unreachable Redis
// turns into fast cache misses instead of per-request timeouts.
func Guard(store Store, breaker *resilience.Breaker) Store {
	return &guardedStore{store: store, breaker: breaker}
}

func (g *guardedStore) Get(ctx context.Context, key string) (string, error) {
	var val string
	err := g.breaker.Do(func() error {
		var err error
		val, err = g.store.Get(ctx, key)
		return err
	})
	return val, err
}

func (g *guardedStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return g.breaker.Do(func() error {
		return g.store.Set(ctx, key, value, ttl)
	})
}

func (g *guardedStore) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	var n int64
	err := g.breaker.Do(func() error {
		var err error
		n, err = g.store.FlushByPattern(ctx, pattern)
		return err
	})
	return n, err
}
