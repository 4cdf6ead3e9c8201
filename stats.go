package nscache

import "sync/atomic"

// Stats is a snapshot of the process-local counters. Counters are not
// persisted and are not aggregated across processes; each instance starts at
// zero and moves monotonically until ResetStats.
type Stats struct {
	Hits   uint64
	Misses uint64
	// HitRate is Hits / (Hits + Misses), or 0 when no requests were made.
	HitRate float64
}

type statsCounters struct {
	hits   atomic.Uint64
	misses atomic.Uint64
}

func (s *statsCounters) hit()  { s.hits.Add(1) }
func (s *statsCounters) miss() { s.misses.Add(1) }

func (s *statsCounters) snapshot() Stats {
	h := s.hits.Load()
	m := s.misses.Load()
	out := Stats{Hits: h, Misses: m}
	if total := h + m; total > 0 {
		out.HitRate = float64(h) / float64(total)
	}
	return out
}

func (s *statsCounters) reset() {
	s.hits.Store(0)
	s.misses.Store(0)
}
