// Package ristretto adapts dgraph-io/ristretto to the nscache store contract.
//
// Ristretto cannot enumerate its contents, so the store keeps a small
// mutex-guarded key index alongside the cache to answer Keys. The index is a
// superset of the live entries (ristretto may evict or expire behind our
// back); Keys re-checks each candidate against the cache before reporting it.
package ristretto

import (
	"context"
	"errors"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	st "github.com/stellarpay/nscache/store"
)

type Store struct {
	c *rc.Cache

	mu    sync.RWMutex
	index map[string]struct{}
}

var _ st.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c, index: make(map[string]struct{})}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		s.c.Del(key)
		s.forget(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.c.SetWithTTL(key, value, int64(len(value)), ttl) {
		// rejected under pressure; make sure the index doesn't over-report
		s.forget(key)
		return nil
	}
	s.mu.Lock()
	s.index[key] = struct{}{}
	s.mu.Unlock()
	return nil
}

func (s *Store) Del(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := s.c.Get(k); ok {
			n++
		}
		s.c.Del(k)
		s.forget(k)
	}
	return n, nil
}

func (s *Store) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	candidates := make([]string, 0, len(s.index))
	for k := range s.index {
		candidates = append(candidates, k)
	}
	s.mu.RUnlock()

	var out []string
	for _, k := range candidates {
		if !st.Match(pattern, k) {
			continue
		}
		if _, live := s.c.Get(k); live {
			out = append(out, k)
		} else {
			s.forget(k)
		}
	}
	return out, nil
}

func (s *Store) Close(context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto's own metrics (not part of store.Store).
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }

func (s *Store) forget(key string) {
	s.mu.Lock()
	delete(s.index, key)
	s.mu.Unlock()
}
