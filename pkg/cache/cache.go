// Package cache stores rendered artifacts and layout snapshots keyed by
// content hash.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the HTTP inspector when several instances share renders, and
// [NewNullCache] when caching is disabled. Keys come from a [Keyer], so the
// same chart and options always map to the same entry regardless of
// backend.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/timelane/pkg/observability"
)

// Cache is a byte-oriented key-value store with per-entry TTL.
type Cache interface {
	// Get returns the value for key. A miss is reported as ok=false with a
	// nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Fetch returns the cached value for key, or calls compute and stores its
// result with ttl. keyType labels the observability events ("svg",
// "snapshot"). A failing cache read is treated as a miss and a failing
// write is ignored; only compute errors are returned.
func Fetch(ctx context.Context, c Cache, key, keyType string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	hooks := observability.Cache()
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, false, nil
}
