// Package store defines the backing-store abstraction used by nscache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no
// prepended/appended metadata, no re-encoding, no mutation). If a store
// performs internal transforms (e.g., compression), they MUST be fully
// reversed so that the bytes returned by Get are identical to the bytes
// provided to Set.
//
// Durability and eviction live in the store, not in nscache: entries expire
// through the store's own TTL mechanics, outside the cache's control.
package store

import (
	"context"
	"time"
)

// Store is a minimal byte store with TTLs and pattern listing.
// Must be safe for concurrent use. All methods may fail at any call; nscache
// treats every failure as a generic store outage and degrades.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. Non-positive TTLs mean no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes keys and returns how many actually existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Keys lists keys matching a glob pattern: '*' matches any run of
	// characters; the pattern is otherwise anchored to full key equality.
	// Match implements this contract for stores that filter in process.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
