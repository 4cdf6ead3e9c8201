package nscache

import (
	"context"
	"time"

	c "github.com/stellarpay/nscache/codec"
	st "github.com/stellarpay/nscache/store"
)

// DefaultKeyPrefix is prepended to every constructed key unless overridden.
const DefaultKeyPrefix = "stellar:"

// FetchFunc produces a value on a cache miss. Returning a nil pointer means
// "nothing to cache": GetOrSet hands nil back to the caller and writes
// nothing, so an absent result never masks a later successful fetch.
type FetchFunc[V any] func(ctx context.Context) (*V, error)

// Cache is the namespace-aware, fail-safe cache API. Every operation that
// talks to the backing store swallows store failures and degrades to its safe
// default (miss / false / 0); the only error a caller ever sees comes from
// its own FetchFunc inside GetOrSet.
type Cache[V any] interface {
	// BuildKey derives the storage key for (ns, id). Pure and deterministic:
	// prefix + abbreviation + ":" + id. Unknown namespaces fall back to the
	// general namespace.
	BuildKey(ns Namespace, id string) string

	// Get reads and decodes a cached value. ok=false on miss, on any
	// backing-store failure, and on decode failure (the corrupt entry is
	// deleted best-effort). Every degraded read counts as a miss.
	Get(ctx context.Context, ns Namespace, id string) (v V, ok bool)

	// Set encodes value and writes it with the resolved TTL: explicit ttl
	// argument if > 0, else the configured override for ns, else the
	// namespace default. Returns false when encoding or the store fails.
	Set(ctx context.Context, ns Namespace, id string, value V, ttl time.Duration) bool

	// Delete removes one key. True only when the store confirms a removal;
	// absent keys and store failures both report false.
	Delete(ctx context.Context, ns Namespace, id string) bool

	// InvalidateNamespace removes every key under ns and returns the number
	// removed. Best-effort and non-atomic: keys written between the listing
	// and the delete batch may survive. 0 on no matches or store failure.
	InvalidateNamespace(ctx context.Context, ns Namespace) int

	// GetOrSet is the cache-aside read. On a hit the fetcher never runs. On
	// a miss it runs exactly once; a non-nil result is written back under
	// the same TTL resolution as Set and returned even if that write
	// degrades. Fetcher errors propagate unwrapped.
	GetOrSet(ctx context.Context, ns Namespace, id string, fetch FetchFunc[V], ttl time.Duration) (*V, error)

	// Stats returns a snapshot of the process-local hit/miss counters.
	Stats() Stats
	// ResetStats zeroes both counters.
	ResetStats()

	// Close releases the backing store.
	Close(ctx context.Context) error
}

// Options tune the cache. Only Store is required.
type Options[V any] struct {
	// Required.
	Store st.Store

	Codec        c.Codec[V]                  // nil => codec.JSON[V]{}
	KeyPrefix    string                      // "" => DefaultKeyPrefix
	TTLOverrides map[Namespace]time.Duration // layered over built-in defaults
	Logger       Logger                      // nil => NopLogger
	Hooks        Hooks                       // nil => NopHooks
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
