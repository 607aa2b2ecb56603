// Package cache stores opaque byte blobs under string keys.
//
// Backends share the [Cache] interface so callers pick storage at startup:
//
//   - [NullCache] never stores anything (tests, --no-cache)
//   - [FileCache] keeps JSON envelopes on disk for the CLI
//   - [RedisCache] shares entries between server replicas
//
// Keys are built by a [Keyer] so that every consumer hashes its inputs the
// same way. The layout solver cache in pkg/layout is the main user.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with optional expiry.
//
// Get reports a miss as (nil, false, nil). Errors are reserved for backend
// failures; callers usually treat them as misses and log.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
