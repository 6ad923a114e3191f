package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// Engine is an in-memory TTL cache with optional size-bounded eviction.
//
// Contract:
// - Concurrency: safe for concurrent use; no method blocks on I/O.
// - Errors: no method fails. A miss is (nil, false).
// - Expiry is lazy: stale entries are dropped when read, swept or evicted.
type Engine struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	// order holds entries by storedAt, oldest at the front.
	order      *list.List
	generation uint64
	// invalidations logs recent Delete, InvalidatePrefix and Clear calls so a
	// fill is rejected only when its own key was invalidated.
	invalidations []invalidation
	// logFloor is the newest generation dropped from invalidations.
	logFloor uint64
	// fills counts in-flight read-through loads by starting generation.
	fills map[uint64]int

	config  Config
	now     func() time.Time
	metrics Metrics
	stats   counters
}

// invalidationLogSize is the number of records kept beyond those needed by
// in-flight fills.
const invalidationLogSize = 256

type invalidation struct {
	gen    uint64
	prefix string
	// exact matches prefix as a whole key (Delete).
	exact bool
}

func (inv invalidation) covers(key string) bool {
	if inv.exact {
		return key == inv.prefix
	}
	return strings.HasPrefix(key, inv.prefix)
}

type cacheEntry struct {
	key       string
	value     any
	storedAt  time.Time
	expiresAt time.Time
}

// EntryInfo describes a stored entry without its value.
type EntryInfo struct {
	Key       string
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMetrics reports engine events to m in addition to the built-in counters.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// New creates an engine. An invalid config is rejected rather than defaulted.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		fills:   make(map[uint64]int),
		config:  cfg,
		now:     time.Now,
		metrics: NoopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Get returns the value stored under key if it is still fresh.
// A stale entry is removed as a side effect.
func (e *Engine) Get(key string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.freshLocked(key)
	if !ok {
		e.stats.misses.Add(1)
		e.metrics.Miss()
		return nil, false
	}

	e.stats.hits.Add(1)
	e.metrics.Hit()
	return entry.value, true
}

// Lookup is a typed Get. A value of another type counts as a miss.
func Lookup[T any](e *Engine, key string) (T, bool) {
	var zero T
	v, ok := e.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Has reports whether key holds a fresh value without counting a hit or miss.
func (e *Engine) Has(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.freshLocked(key)
	return ok
}

// Set stores value under key. A non-positive ttl selects the configured TTL.
// Overwriting a key makes it the newest entry.
func (e *Engine) Set(key string, value any, ttl time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.setLocked(key, value, ttl)
}

// Generation returns a token that advances whenever entries are invalidated.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// StoreIfCurrent stores value unless a Delete, InvalidatePrefix or Clear
// covering key has happened since gen was read. Invalidations of other keys
// do not block the store. It reports whether the value was stored.
func (e *Engine) StoreIfCurrent(key string, value any, ttl time.Duration, gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.invalidatedSinceLocked(key, gen) {
		return false
	}
	e.setLocked(key, value, ttl)
	return true
}

// Delete removes key. Idempotent.
func (e *Engine) Delete(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.recordLocked(invalidation{prefix: key, exact: true})
	if elem, ok := e.entries[key]; ok {
		e.removeLocked(elem)
	}
}

// InvalidatePrefix removes every key starting with prefix and returns how many
// entries were removed. The scan is linear in the store size.
func (e *Engine) InvalidatePrefix(prefix string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.recordLocked(invalidation{prefix: prefix})
	removed := 0
	for elem := e.order.Front(); elem != nil; {
		next := elem.Next()
		if strings.HasPrefix(elem.Value.(*cacheEntry).key, prefix) {
			e.removeLocked(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Clear empties the store.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.recordLocked(invalidation{})
	e.entries = make(map[string]*list.Element)
	e.order.Init()
}

// beginFill registers a load starting now and returns its generation.
// It must be paired with endFill.
func (e *Engine) beginFill() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fills[e.generation]++
	return e.generation
}

func (e *Engine) endFill(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fills[gen]--; e.fills[gen] <= 0 {
		delete(e.fills, gen)
	}
}

func (e *Engine) recordLocked(inv invalidation) {
	e.generation++
	inv.gen = e.generation
	e.invalidations = append(e.invalidations, inv)

	if len(e.invalidations) <= 2*invalidationLogSize {
		return
	}
	drop := len(e.invalidations) - invalidationLogSize
	for gen := range e.fills {
		// Records newer than an in-flight fill stay.
		for drop > 0 && e.invalidations[drop-1].gen > gen {
			drop--
		}
	}
	if drop == 0 {
		return
	}
	e.logFloor = e.invalidations[drop-1].gen
	e.invalidations = append([]invalidation(nil), e.invalidations[drop:]...)
}

func (e *Engine) invalidatedSinceLocked(key string, gen uint64) bool {
	if gen < e.logFloor {
		// Records that might cover key are gone.
		return true
	}
	for i := len(e.invalidations) - 1; i >= 0; i-- {
		inv := e.invalidations[i]
		if inv.gen <= gen {
			break
		}
		if inv.covers(key) {
			return true
		}
	}
	return false
}

// Len returns the number of stored entries, including stale ones not yet removed.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// Sweep removes every stale entry and returns how many were removed.
// It does not change what Get returns.
func (e *Engine) Sweep() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	removed := 0
	for elem := e.order.Front(); elem != nil; {
		next := elem.Next()
		if now.After(elem.Value.(*cacheEntry).expiresAt) {
			e.removeLocked(elem)
			e.stats.expirations.Add(1)
			e.metrics.Expire()
			removed++
		}
		elem = next
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
// The returned channel is closed once the sweeper has stopped.
func (e *Engine) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.Sweep()
			}
		}
	}()
	return done
}

// Snapshot lists stored entries, oldest first.
func (e *Engine) Snapshot() []EntryInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	infos := make([]EntryInfo, 0, len(e.entries))
	for elem := e.order.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*cacheEntry)
		infos = append(infos, EntryInfo{
			Key:       entry.key,
			StoredAt:  entry.storedAt,
			ExpiresAt: entry.expiresAt,
		})
	}
	return infos
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	size := len(e.entries)
	e.mu.Unlock()

	return Stats{
		Hits:        e.stats.hits.Load(),
		Misses:      e.stats.misses.Load(),
		Evictions:   e.stats.evictions.Load(),
		Expirations: e.stats.expirations.Load(),
		Size:        size,
		MaxSize:     e.config.MaxSize,
	}
}

func (e *Engine) freshLocked(key string) (*cacheEntry, bool) {
	elem, ok := e.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if e.now().After(entry.expiresAt) {
		e.removeLocked(elem)
		e.stats.expirations.Add(1)
		e.metrics.Expire()
		return nil, false
	}
	return entry, true
}

func (e *Engine) setLocked(key string, value any, ttl time.Duration) {
	now := e.now()
	ttl = e.config.EffectiveTTL(ttl)

	if elem, ok := e.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.storedAt = now
		entry.expiresAt = now.Add(ttl)
		e.order.MoveToBack(elem)
		return
	}

	if e.config.Bounded() && len(e.entries) >= e.config.MaxSize {
		if oldest := e.order.Front(); oldest != nil {
			e.removeLocked(oldest)
			e.stats.evictions.Add(1)
			e.metrics.Eviction()
		}
	}

	e.entries[key] = e.order.PushBack(&cacheEntry{
		key:       key,
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	})
}

func (e *Engine) removeLocked(elem *list.Element) {
	entry := e.order.Remove(elem).(*cacheEntry)
	delete(e.entries, entry.key)
}
