package surface

import (
	"maps"
	"slices"
	"sync"
)

// Topic is a keyed last-value store with change notification.
// Singleton values use the empty key.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Delivery: subscribers run synchronously on the publishing goroutine,
//     after the topic's lock is released, in subscription order.
//   - Ownership: values are stored as given; publishers must not mutate them
//     afterwards.
type Topic[V any] struct {
	name string

	mu      sync.Mutex
	values  map[string]V
	subs    map[uint64]func(key string, value V)
	nextID  uint64
	version uint64
}

// NewTopic creates an empty topic.
func NewTopic[V any](name string) *Topic[V] {
	return &Topic[V]{
		name:   name,
		values: make(map[string]V),
		subs:   make(map[uint64]func(string, V)),
	}
}

// Name returns the topic name.
func (t *Topic[V]) Name() string {
	return t.name
}

// Publish replaces the value at key and notifies subscribers.
func (t *Topic[V]) Publish(key string, value V) {
	t.mu.Lock()
	t.values[key] = value
	t.version++
	ids := slices.Sorted(maps.Keys(t.subs))
	fns := make([]func(string, V), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, t.subs[id])
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(key, value)
	}
}

// Get returns the value published at key.
func (t *Topic[V]) Get(key string) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[key]
	return v, ok
}

// Snapshot returns a copy of every published value.
func (t *Topic[V]) Snapshot() map[string]V {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.values)
}

// Keys returns the published keys in sorted order.
func (t *Topic[V]) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Sorted(maps.Keys(t.values))
}

// Version counts publishes since creation.
func (t *Topic[V]) Version() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// Subscribe registers fn for future publishes. The returned cancel func
// removes it and is safe to call more than once.
func (t *Topic[V]) Subscribe(fn func(key string, value V)) (cancel func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}
