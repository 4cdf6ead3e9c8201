package nscache

import (
	"context"
	"time"

	c "github.com/stellarpay/nscache/codec"
	st "github.com/stellarpay/nscache/store"
)

type cache[V any] struct {
	store  st.Store
	codec  c.Codec[V]
	log    Logger
	hooks  Hooks
	prefix string
	ttls   map[Namespace]time.Duration

	stats statsCounters
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, ErrNilStore
	}

	cc := &cache[V]{
		store:  opts.Store,
		prefix: coalesce(opts.KeyPrefix, DefaultKeyPrefix),
		log:    coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:  coalesce[Hooks](opts.Hooks, NopHooks{}),
	}

	if opts.Codec != nil {
		cc.codec = opts.Codec
	} else {
		cc.codec = c.JSON[V]{}
	}

	// copy overrides so later caller mutation can't change TTL policy
	if len(opts.TTLOverrides) > 0 {
		cc.ttls = make(map[Namespace]time.Duration, len(opts.TTLOverrides))
		for ns, ttl := range opts.TTLOverrides {
			cc.ttls[ns] = ttl
		}
	}

	return cc, nil
}

func (cc *cache[V]) BuildKey(ns Namespace, id string) string {
	if !ns.Valid() {
		cc.hooks.UnknownNamespace(string(ns))
		ns = General
	}
	return cc.prefix + ns.Abbrev() + ":" + id
}

func (cc *cache[V]) Get(ctx context.Context, ns Namespace, id string) (V, bool) {
	var zero V
	k := cc.BuildKey(ns, id)

	raw, ok, err := cc.store.Get(ctx, k)
	if err != nil {
		cc.degradedRead("get", k, err)
		return zero, false
	}
	if !ok {
		cc.stats.miss()
		return zero, false
	}
	v, err := cc.codec.Decode(raw)
	if err != nil {
		// self-heal: drop the entry we can no longer read
		_, _ = cc.store.Del(ctx, k)
		cc.hooks.CodecError(k, err)
		cc.log.Warn("cache decode failed, entry dropped", Fields{"key": k, "err": err})
		cc.stats.miss()
		return zero, false
	}
	cc.stats.hit()
	return v, true
}

func (cc *cache[V]) Set(ctx context.Context, ns Namespace, id string, value V, ttl time.Duration) bool {
	k := cc.BuildKey(ns, id)

	raw, err := cc.codec.Encode(value)
	if err != nil {
		cc.hooks.CodecError(k, err)
		cc.log.Warn("cache encode failed", Fields{"key": k, "err": err})
		return false
	}
	if err := cc.store.Set(ctx, k, raw, cc.resolveTTL(ns, ttl)); err != nil {
		cc.hooks.StoreError("set", k, err)
		cc.log.Warn("cache set failed", Fields{"key": k, "err": err})
		return false
	}
	return true
}

func (cc *cache[V]) Delete(ctx context.Context, ns Namespace, id string) bool {
	k := cc.BuildKey(ns, id)
	n, err := cc.store.Del(ctx, k)
	if err != nil {
		cc.hooks.StoreError("del", k, err)
		cc.log.Warn("cache delete failed", Fields{"key": k, "err": err})
		return false
	}
	return n > 0
}

func (cc *cache[V]) InvalidateNamespace(ctx context.Context, ns Namespace) int {
	pattern := cc.BuildKey(ns, "*")
	keys, err := cc.store.Keys(ctx, pattern)
	if err != nil {
		cc.hooks.StoreError("keys", pattern, err)
		cc.log.Warn("namespace listing failed", Fields{"pattern": pattern, "err": err})
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	n, err := cc.store.Del(ctx, keys...)
	if err != nil {
		cc.hooks.StoreError("del", pattern, err)
		cc.log.Warn("namespace invalidation failed", Fields{"pattern": pattern, "err": err})
		return 0
	}
	cc.log.Debug("namespace invalidated", Fields{"ns": string(ns), "removed": n})
	return int(n)
}

func (cc *cache[V]) GetOrSet(ctx context.Context, ns Namespace, id string, fetch FetchFunc[V], ttl time.Duration) (*V, error) {
	if v, ok := cc.Get(ctx, ns, id); ok {
		return &v, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		// caller business logic, not store trouble: propagate as-is
		return nil, err
	}
	if v == nil {
		// never cache absence
		return nil, nil
	}
	cc.Set(ctx, ns, id, *v, ttl)
	return v, nil
}

func (cc *cache[V]) Stats() Stats { return cc.stats.snapshot() }
func (cc *cache[V]) ResetStats()  { cc.stats.reset() }

func (cc *cache[V]) Close(ctx context.Context) error {
	return cc.store.Close(ctx)
}

// resolveTTL: explicit argument > configured override > namespace default.
func (cc *cache[V]) resolveTTL(ns Namespace, ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	if o, ok := cc.ttls[ns]; ok {
		return o
	}
	return defaultTTL(ns)
}

// degradedRead records a store failure on the read path. The caller observed
// a miss, so the miss counter moves too; the hit rate keeps describing what
// callers actually saw.
func (cc *cache[V]) degradedRead(op, key string, err error) {
	cc.hooks.StoreError(op, key, err)
	cc.log.Warn("cache read degraded to miss", Fields{"op": op, "key": key, "err": err})
	cc.stats.miss()
}
