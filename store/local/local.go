// Package local provides an in-process Store backed by a plain map.
// Useful for tests and single-process deployments; nothing survives a
// restart.
package local

import (
	"context"
	"sync"
	"time"

	st "github.com/stellarpay/nscache/store"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

// Local keeps entries in memory with lazy per-entry expiry: expired keys are
// dropped when touched by Get, Del or Keys.
type Local struct {
	mu sync.RWMutex
	m  map[string]entry
}

var _ st.Store = (*Local)(nil)

func New() *Local {
	return &Local{m: make(map[string]entry)}
}

func (s *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.expired(time.Now()) {
		s.mu.Lock()
		delete(s.m, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	// copy so callers can't mutate stored bytes
	out := make([]byte, len(e.v))
	copy(out, e.v)
	return out, true, nil
}

func (s *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{v: make([]byte, len(value))}
	copy(e.v, value)
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.m[key] = e
	s.mu.Unlock()
	return nil
}

func (s *Local) Del(_ context.Context, keys ...string) (int64, error) {
	now := time.Now()
	var n int64
	s.mu.Lock()
	for _, k := range keys {
		if e, ok := s.m[k]; ok {
			if !e.expired(now) {
				n++
			}
			delete(s.m, k)
		}
	}
	s.mu.Unlock()
	return n, nil
}

func (s *Local) Keys(_ context.Context, pattern string) ([]string, error) {
	now := time.Now()
	var out []string
	s.mu.RLock()
	for k, e := range s.m {
		if e.expired(now) {
			continue
		}
		if st.Match(pattern, k) {
			out = append(out, k)
		}
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *Local) Close(context.Context) error {
	s.mu.Lock()
	s.m = make(map[string]entry)
	s.mu.Unlock()
	return nil
}

// Len reports the number of live entries. Not part of store.Store; handy in
// tests.
func (s *Local) Len() int {
	now := time.Now()
	n := 0
	s.mu.RLock()
	for _, e := range s.m {
		if !e.expired(now) {
			n++
		}
	}
	s.mu.RUnlock()
	return n
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}
