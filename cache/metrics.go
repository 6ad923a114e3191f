package cache

import "sync/atomic"

// Metrics receives engine events.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Methods are called with the engine lock held and must return quickly.
type Metrics interface {
	// Hit is called when Get returns a fresh value.
	Hit()

	// Miss is called when Get finds nothing fresh.
	Miss()

	// Eviction is called when a live entry is dropped to respect MaxSize.
	Eviction()

	// Expire is called when a stale entry is removed.
	Expire()
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Eviction() {}
func (NoopMetrics) Expire()   {}

// Stats is a point-in-time view of engine counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	Size        int
	MaxSize     int
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type counters struct {
	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64
}
