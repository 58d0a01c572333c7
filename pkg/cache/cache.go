// Package cache implements the cache-aside layer for marketplace reads.
// Keys are deterministic over (endpoint, params) so parameter order never
// splits entries, failed resolutions are never stored, and bypass calls
// never warm the cache.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/eddyjj92/compay-storefront/pkg/metrics"
)

// DefaultTTL matches the upstream service default of 10 minutes.
const DefaultTTL = 600 * time.Second

// ErrMiss signals that a key is absent from the store.
var ErrMiss = errors.New("cache miss")

// Store is the minimal key/value surface the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Mode controls caching for a single call site.
type Mode struct {
	Enabled bool
	TTL     time.Duration
}

// Bypass disables caching for the call.
func Bypass() Mode {
	return Mode{}
}

// For enables caching with the default TTL.
func For() Mode {
	return Mode{Enabled: true}
}

// ForTTL enables caching with an explicit TTL.
func ForTTL(ttl time.Duration) Mode {
	return Mode{Enabled: true, TTL: ttl}
}

// Resolver produces the raw value on a miss.
type Resolver func() ([]byte, error)

// Cache is a cache-aside wrapper over a Store.
type Cache struct {
	store      Store
	defaultTTL time.Duration
	metrics    *metrics.UpstreamMetrics
}

// New builds a cache with the given default TTL (DefaultTTL when zero).
func New(store Store, defaultTTL time.Duration, m *metrics.UpstreamMetrics) (*Cache, error) {
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{store: store, defaultTTL: defaultTTL, metrics: m}, nil
}

// Fetch runs the resolver through the cache according to mode. The key is
// derived from endpoint+params via BuildKey. A resolver failure propagates
// without populating the store.
func (c *Cache) Fetch(ctx context.Context, endpoint string, params map[string]string, mode Mode, resolve Resolver) ([]byte, error) {
	if !mode.Enabled {
		return resolve()
	}

	key := BuildKey(endpoint, params)
	if stored, err := c.store.Get(ctx, key); err == nil {
		c.metrics.IncCacheHit(endpoint)
		return []byte(stored), nil
	} else if !errors.Is(err, ErrMiss) {
		// Store trouble degrades to a direct call rather than failing the read.
		return resolve()
	}

	c.metrics.IncCacheMiss(endpoint)
	value, err := resolve()
	if err != nil {
		return nil, err
	}

	ttl := mode.TTL
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.store.Set(ctx, key, string(value), ttl); err != nil {
		// The value is still good; the next read just misses again.
		return value, nil
	}
	return value, nil
}

// Forget removes exactly the entry for the computed key.
func (c *Cache) Forget(ctx context.Context, endpoint string, params map[string]string) error {
	return c.store.Del(ctx, BuildKey(endpoint, params))
}
