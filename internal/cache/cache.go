// internal/cache/cache.go
package cache

import (
	"context"
	"time"

	"moodbrew/internal/common/logger"
	"moodbrew/internal/common/metrics"
)

// Cache is a time-bounded view over a Store. Store errors are logged and
// reported as misses so callers always have a path forward.
type Cache[T any] struct {
	kind   string
	store  Store[T]
	clock  Clock
	ttl    time.Duration
	logger logger.Logger
}

type options struct {
	clock Clock
}

type Option func(*options)

// WithClock replaces the wall clock used for CreatedAt and liveness checks.
func WithClock(clock Clock) Option {
	return func(o *options) { o.clock = clock }
}

func New[T any](kind string, store Store[T], ttl time.Duration, log logger.Logger, opts ...Option) *Cache[T] {
	o := options{clock: SystemClock}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		kind:   kind,
		store:  store,
		clock:  o.clock,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "cache", "kind": kind}),
	}
}

func (c *Cache[T]) Kind() string { return c.kind }

// TTL is the default lifetime of entries written with Put.
func (c *Cache[T]) TTL() time.Duration { return c.ttl }

// Get returns the value for key if a live entry exists.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T

	entry, found, err := c.store.Load(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("cache load failed, treating as miss", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		metrics.CacheLookups.WithLabelValues(c.kind, "error").Inc()
		return zero, false
	case !found:
		metrics.CacheLookups.WithLabelValues(c.kind, "miss").Inc()
		return zero, false
	case !entry.Live(c.clock.Now()):
		metrics.CacheLookups.WithLabelValues(c.kind, "expired").Inc()
		return zero, false
	}

	metrics.CacheLookups.WithLabelValues(c.kind, "hit").Inc()
	return entry.Value, true
}

// Put stores value under key with the cache's default TTL.
func (c *Cache[T]) Put(ctx context.Context, key string, value T) {
	c.PutWithTTL(ctx, key, value, c.ttl)
}

// PutWithTTL replaces any entry for key. Write failures are logged only.
func (c *Cache[T]) PutWithTTL(ctx context.Context, key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	entry := Entry[T]{
		Key:       key,
		Value:     value,
		CreatedAt: c.clock.Now(),
		TTL:       ttl,
	}
	if err := c.store.Save(ctx, entry); err != nil {
		c.logger.Warn("cache save failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}

// InvalidatePrefix removes every entry whose key starts with prefix.
func (c *Cache[T]) InvalidatePrefix(ctx context.Context, prefix string) (int, error) {
	n, err := c.store.DeletePrefix(ctx, prefix)
	if err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{
			"prefix": prefix,
			"error":  err,
		})
		return n, err
	}
	c.logger.Debug("cache invalidated", map[string]interface{}{
		"prefix":  prefix,
		"deleted": n,
	})
	return n, nil
}
