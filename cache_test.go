package nscache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	c "github.com/stellarpay/nscache/codec"
	st "github.com/stellarpay/nscache/store"
)

type memEntry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type memStore struct {
	m          map[string]memEntry
	setCalls   int
	lastSetTTL time.Duration
}

var _ st.Store = (*memStore)(nil)

func newMemStore() *memStore { return &memStore{m: make(map[string]memEntry)} }

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(s.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.setCalls++
	s.lastSetTTL = ttl
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.m[key] = memEntry{v: value, exp: exp}
	return nil
}

func (s *memStore) Del(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := s.m[k]; ok {
			delete(s.m, k)
			n++
		}
	}
	return n, nil
}

func (s *memStore) Keys(_ context.Context, pattern string) ([]string, error) {
	var out []string
	for k := range s.m {
		if st.Match(pattern, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *memStore) Close(_ context.Context) error { return nil }

var errStoreDown = errors.New("store down")

// failStore rejects every call, simulating a backing-store outage.
type failStore struct{}

var _ st.Store = failStore{}

func (failStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errStoreDown
}
func (failStore) Set(context.Context, string, []byte, time.Duration) error { return errStoreDown }
func (failStore) Del(context.Context, ...string) (int64, error)            { return 0, errStoreDown }
func (failStore) Keys(context.Context, string) ([]string, error)           { return nil, errStoreDown }
func (failStore) Close(context.Context) error                              { return errStoreDown }

type recordingHooks struct {
	storeErrs  []string // op values
	codecErrs  []string // keys
	unknownNSs []string
}

func (h *recordingHooks) StoreError(op, _ string, _ error) { h.storeErrs = append(h.storeErrs, op) }
func (h *recordingHooks) CodecError(key string, _ error)   { h.codecErrs = append(h.codecErrs, key) }
func (h *recordingHooks) UnknownNamespace(ns string)       { h.unknownNSs = append(h.unknownNSs, ns) }

type profile struct {
	Name    string            `json:"name"`
	Balance int               `json:"balance"`
	Tags    []string          `json:"tags,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func newTestCache(t *testing.T, s st.Store, optsOpt func(*Options[profile])) Cache[profile] {
	t.Helper()
	opts := Options[profile]{Store: s}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	cc, err := New[profile](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cc
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New[profile](Options[profile]{})
	if !errors.Is(err, ErrNilStore) {
		t.Fatalf("expected ErrNilStore, got %v", err)
	}
}

func TestBuildKeyDeterministic(t *testing.T) {
	cc := newTestCache(t, newMemStore(), nil)

	k1 := cc.BuildKey(Users, "u1")
	k2 := cc.BuildKey(Users, "u1")
	if k1 != k2 {
		t.Fatalf("BuildKey not deterministic: %q vs %q", k1, k2)
	}
	if k1 != "stellar:usr:u1" {
		t.Fatalf("unexpected key %q", k1)
	}

	custom := newTestCache(t, newMemStore(), func(o *Options[profile]) { o.KeyPrefix = "app:" })
	if got := custom.BuildKey(Users, "u1"); got != "app:usr:u1" {
		t.Fatalf("prefix override: got %q", got)
	}
}

func TestBuildKeyUnknownNamespaceFallsBack(t *testing.T) {
	hooks := &recordingHooks{}
	cc := newTestCache(t, newMemStore(), func(o *Options[profile]) { o.Hooks = hooks })

	if got := cc.BuildKey(Namespace("bogus"), "x"); got != "stellar:gen:x" {
		t.Fatalf("expected general fallback, got %q", got)
	}
	if len(hooks.unknownNSs) != 1 || hooks.unknownNSs[0] != "bogus" {
		t.Fatalf("UnknownNamespace hook not fired: %v", hooks.unknownNSs)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newMemStore(), nil)

	v := profile{
		Name:    "Alice",
		Balance: 100,
		Tags:    []string{"vip", "beta"},
		Meta:    map[string]string{"region": "eu", "tier": "gold"},
	}
	if !cc.Set(ctx, Users, "u1", v, 0) {
		t.Fatal("Set failed")
	}
	got, ok := cc.Get(ctx, Users, "u1")
	if !ok {
		t.Fatal("expected hit")
	}
	if !reflect.DeepEqual(got, v) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, v)
	}
}

func TestMissAndHitCounters(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newMemStore(), nil)

	if _, ok := cc.Get(ctx, Users, "nope"); ok {
		t.Fatal("expected miss")
	}
	s := cc.Stats()
	if s.Misses != 1 || s.Hits != 0 {
		t.Fatalf("after miss: %+v", s)
	}

	cc.Set(ctx, Users, "u1", profile{Name: "Alice", Balance: 100}, 0)
	if _, ok := cc.Get(ctx, Users, "u1"); !ok {
		t.Fatal("expected hit")
	}
	s = cc.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Fatalf("after hit: %+v", s)
	}
}

// The documented example: one set, one get, stats report a perfect hit rate.
func TestExampleScenario(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newMemStore(), nil)

	cc.Set(ctx, Users, "u1", profile{Name: "Alice", Balance: 100}, 0)
	got, ok := cc.Get(ctx, Users, "u1")
	if !ok || got.Name != "Alice" || got.Balance != 100 {
		t.Fatalf("get: ok=%v got=%+v", ok, got)
	}
	s := cc.Stats()
	if s.Hits != 1 || s.Misses != 0 || s.HitRate != 1 {
		t.Fatalf("stats: %+v", s)
	}
}

func TestTTLResolution(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, func(o *Options[profile]) {
		o.TTLOverrides = map[Namespace]time.Duration{Users: 90 * time.Second}
	})

	// explicit argument wins
	cc.Set(ctx, Users, "a", profile{}, 30*time.Second)
	if ms.lastSetTTL != 30*time.Second {
		t.Fatalf("explicit ttl: got %v", ms.lastSetTTL)
	}

	// configured override next
	cc.Set(ctx, Users, "b", profile{}, 0)
	if ms.lastSetTTL != 90*time.Second {
		t.Fatalf("override ttl: got %v", ms.lastSetTTL)
	}

	// built-in namespace default last
	cc.Set(ctx, Invoices, "c", profile{}, 0)
	if ms.lastSetTTL != 10*time.Minute {
		t.Fatalf("default ttl: got %v", ms.lastSetTTL)
	}
}

func TestGetOrSetSkipsFetcherOnHit(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newMemStore(), nil)

	cached := profile{Name: "Bob", Balance: 7}
	cc.Set(ctx, Users, "u2", cached, 0)

	calls := 0
	v, err := cc.GetOrSet(ctx, Users, "u2", func(context.Context) (*profile, error) {
		calls++
		return &profile{Name: "fresh"}, nil
	}, 0)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}
	if calls != 0 {
		t.Fatalf("fetcher ran %d times on a hit", calls)
	}
	if v == nil || !reflect.DeepEqual(*v, cached) {
		t.Fatalf("got %+v", v)
	}
}

func TestGetOrSetFetchesOnceAndWrites(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	fresh := profile{Name: "Carol", Balance: 3}
	calls := 0
	v, err := cc.GetOrSet(ctx, Users, "u3", func(context.Context) (*profile, error) {
		calls++
		return &fresh, nil
	}, 0)
	if err != nil || v == nil || v.Name != "Carol" {
		t.Fatalf("GetOrSet: v=%+v err=%v", v, err)
	}
	if calls != 1 {
		t.Fatalf("fetcher calls = %d", calls)
	}

	// value landed in the store: next read is a hit, fetcher stays idle
	got, ok := cc.Get(ctx, Users, "u3")
	if !ok || !reflect.DeepEqual(got, fresh) {
		t.Fatalf("after write-back: ok=%v got=%+v", ok, got)
	}
}

func TestGetOrSetNeverCachesAbsence(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	v, err := cc.GetOrSet(ctx, Users, "ghost", func(context.Context) (*profile, error) {
		return nil, nil
	}, 0)
	if err != nil || v != nil {
		t.Fatalf("expected nil,nil; got %+v, %v", v, err)
	}
	if ms.setCalls != 0 {
		t.Fatalf("absence was written to the store (%d set calls)", ms.setCalls)
	}
}

func TestGetOrSetPropagatesFetcherError(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newMemStore(), nil)

	boom := errors.New("db unreachable")
	_, err := cc.GetOrSet(ctx, Users, "u4", func(context.Context) (*profile, error) {
		return nil, boom
	}, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetcher error, got %v", err)
	}
}

func TestInvalidateNamespace(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newMemStore(), nil)

	for _, id := range []string{"i1", "i2", "i3"} {
		cc.Set(ctx, Invoices, id, profile{Name: id}, 0)
	}
	cc.Set(ctx, Users, "u1", profile{Name: "Alice"}, 0)
	cc.Set(ctx, Users, "u2", profile{Name: "Bob"}, 0)

	if n := cc.InvalidateNamespace(ctx, Invoices); n != 3 {
		t.Fatalf("invalidated %d, want 3", n)
	}
	if _, ok := cc.Get(ctx, Invoices, "i1"); ok {
		t.Fatal("invoice survived invalidation")
	}
	for _, id := range []string{"u1", "u2"} {
		if _, ok := cc.Get(ctx, Users, id); !ok {
			t.Fatalf("user %s lost to another namespace's invalidation", id)
		}
	}

	// nothing left to remove
	if n := cc.InvalidateNamespace(ctx, Invoices); n != 0 {
		t.Fatalf("second invalidation removed %d", n)
	}
}

// Identifiers are opaque caller strings; ones with separator characters must
// still be swept by bulk invalidation.
func TestInvalidateNamespaceOpaqueIdentifiers(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newMemStore(), nil)

	ids := []string{"region/eu/u1", "u2", "a?b", "x[0]"}
	for _, id := range ids {
		cc.Set(ctx, Users, id, profile{Name: id}, 0)
	}

	if n := cc.InvalidateNamespace(ctx, Users); n != len(ids) {
		t.Fatalf("invalidated %d, want %d", n, len(ids))
	}
	for _, id := range ids {
		if _, ok := cc.Get(ctx, Users, id); ok {
			t.Fatalf("id %q survived invalidation", id)
		}
	}
}

func TestFailureIsolation(t *testing.T) {
	ctx := context.Background()
	hooks := &recordingHooks{}
	cc := newTestCache(t, failStore{}, func(o *Options[profile]) { o.Hooks = hooks })

	if _, ok := cc.Get(ctx, Users, "u1"); ok {
		t.Fatal("Get should degrade to miss")
	}
	if cc.Set(ctx, Users, "u1", profile{}, 0) {
		t.Fatal("Set should report false")
	}
	if cc.Delete(ctx, Users, "u1") {
		t.Fatal("Delete should report false")
	}
	if n := cc.InvalidateNamespace(ctx, Users); n != 0 {
		t.Fatalf("InvalidateNamespace should report 0, got %d", n)
	}
	if len(hooks.storeErrs) != 4 {
		t.Fatalf("expected 4 store error hooks, got %v", hooks.storeErrs)
	}

	// a degraded read counts as a miss
	s := cc.Stats()
	if s.Misses != 1 || s.Hits != 0 {
		t.Fatalf("degraded-read counters: %+v", s)
	}

	// cache-aside still works end to end with the store down
	v, err := cc.GetOrSet(ctx, Users, "u1", func(context.Context) (*profile, error) {
		return &profile{Name: "fromDB"}, nil
	}, 0)
	if err != nil || v == nil || v.Name != "fromDB" {
		t.Fatalf("GetOrSet with store down: v=%+v err=%v", v, err)
	}
}

func TestDecodeErrorSelfHeals(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	hooks := &recordingHooks{}
	cc := newTestCache(t, ms, func(o *Options[profile]) { o.Hooks = hooks })

	k := cc.BuildKey(Users, "corrupt")
	ms.m[k] = memEntry{v: []byte("{not json")}

	if _, ok := cc.Get(ctx, Users, "corrupt"); ok {
		t.Fatal("corrupt entry produced a hit")
	}
	if _, still := ms.m[k]; still {
		t.Fatal("corrupt entry was not dropped")
	}
	if len(hooks.codecErrs) != 1 {
		t.Fatalf("CodecError hook: %v", hooks.codecErrs)
	}
	if s := cc.Stats(); s.Misses != 1 {
		t.Fatalf("decode failure should count as miss: %+v", s)
	}
}

func TestStatsHitRateAndReset(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newMemStore(), nil)

	if s := cc.Stats(); s.HitRate != 0 {
		t.Fatalf("empty hit rate = %v", s.HitRate)
	}

	cc.Set(ctx, Users, "u1", profile{Name: "Alice"}, 0)
	cc.Get(ctx, Users, "u1")   // hit
	cc.Get(ctx, Users, "none") // miss

	s := cc.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Fatalf("counters: %+v", s)
	}
	if diff := s.HitRate - 0.5; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("hit rate = %v", s.HitRate)
	}

	cc.ResetStats()
	if s := cc.Stats(); s.Hits != 0 || s.Misses != 0 || s.HitRate != 0 {
		t.Fatalf("after reset: %+v", s)
	}
}

func TestCustomCodec(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newMemStore(), func(o *Options[profile]) {
		o.Codec = c.Msgpack[profile]{}
	})

	v := profile{Name: "Dave", Balance: 42}
	if !cc.Set(ctx, Users, "u5", v, 0) {
		t.Fatal("Set failed")
	}
	got, ok := cc.Get(ctx, Users, "u5")
	if !ok || !reflect.DeepEqual(got, v) {
		t.Fatalf("msgpack round trip: ok=%v got=%+v", ok, got)
	}
}
