// Package bigcache adapts allegro/bigcache to the nscache store contract.
//
// BigCache has no per-entry TTL: every entry lives for the configured
// LifeWindow. The TTL passed to Set is ignored, which keeps this store
// suitable only for namespaces that tolerate a single shared lifetime.
package bigcache

import (
	"context"
	"time"

	bc "github.com/allegro/bigcache/v3"

	st "github.com/stellarpay/nscache/store"
)

type Store struct {
	c *bc.BigCache
}

var _ st.Store = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := s.c.Get(key)
	if err == bc.ErrEntryNotFound {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (s *Store) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	// per-entry TTL unsupported; global LifeWindow applies
	return s.c.Set(key, value)
}

func (s *Store) Del(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		err := s.c.Delete(k)
		if err == bc.ErrEntryNotFound {
			continue
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Store) Keys(_ context.Context, pattern string) ([]string, error) {
	var out []string
	it := s.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			return nil, err
		}
		if st.Match(pattern, e.Key()) {
			out = append(out, e.Key())
		}
	}
	return out, nil
}

func (s *Store) Close(context.Context) error {
	return s.c.Close()
}
