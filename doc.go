// Package nscache implements a namespace-partitioned, TTL-governed cache-aside
// layer on top of a shared key-value store. Reads never fail loudly: any
// backing-store or decode problem degrades to a cache miss so the caller falls
// back to its authoritative source.
//
// Components:
//   - store.Store: byte store with TTL and pattern listing (e.g. Redis,
//     BigCache, Ristretto, or the in-process local store).
//   - codec.Codec[V]: (de)serializes V <-> []byte. JSON by default.
//   - Namespace: closed set of key-space partitions, each with a fixed
//     abbreviation and its own default TTL.
//
// Keys:
//
//	<prefix><abbrev>:<id>  e.g. "stellar:usr:u1"
//
// Cache-aside pattern:
//
//	v, err := cache.GetOrSet(ctx, nscache.Users, "u1", func(ctx context.Context) (*User, error) {
//	    return loadUserFromDB(ctx, "u1")
//	}, 0)
//
// A hit returns the cached value without touching the loader; a miss runs the
// loader exactly once and writes a non-nil result back under the resolved TTL.
// Loader errors propagate to the caller; store errors never do.
package nscache
