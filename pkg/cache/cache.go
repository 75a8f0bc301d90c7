// Package cache stores fetched repository data between runs.
//
// Resolving a dependency tree downloads one POM per artifact version. POMs
// for released versions never change, so they are cached by key with an
// optional TTL. Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: a shared Redis instance, for CI fleets
//   - [NullCache]: caching disabled
//
// [Prefixed] scopes any backend to a key namespace, [Compressed] stores
// entries zstd-compressed, and [Keyer] derives the keys used by the Maven
// client.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss returns
	// (nil, false, nil); expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
