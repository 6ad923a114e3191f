package datasource

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemorySource is an in-process Source. Documents keep insertion order.
// Every Query and Lookup is counted per collection, including failed ones.
type MemorySource struct {
	mu          sync.Mutex
	collections map[string][]Document
	calls       map[string]int
	faults      map[string]error
	onCall      func(ctx context.Context, collection string)
}

// NewMemorySource creates an empty store.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		collections: make(map[string][]Document),
		calls:       make(map[string]int),
		faults:      make(map[string]error),
	}
}

// Put inserts or replaces documents by id. Replacements keep their position.
func (m *MemorySource) Put(collection string, docs ...Document) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.collections[collection]
	for _, d := range docs {
		d = cloneDocument(d)
		if i := slices.IndexFunc(existing, func(e Document) bool { return e.ID == d.ID }); i >= 0 {
			existing[i] = d
			continue
		}
		existing = append(existing, d)
	}
	m.collections[collection] = existing
}

// Remove deletes a document. It reports whether the document existed.
func (m *MemorySource) Remove(collection, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collections[collection]
	i := slices.IndexFunc(docs, func(e Document) bool { return e.ID == id })
	if i < 0 {
		return false
	}
	m.collections[collection] = slices.Delete(docs, i, i+1)
	return true
}

// FailWith makes every call on collection fail with err wrapped in a
// *QueryError. A nil err clears the fault.
func (m *MemorySource) FailWith(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, collection)
		return
	}
	m.faults[collection] = err
}

// OnCall registers a hook run at the start of every call, outside the lock.
// Tests use it to hold a request in flight.
func (m *MemorySource) OnCall(fn func(ctx context.Context, collection string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCall = fn
}

// Calls returns the number of calls made against collection.
func (m *MemorySource) Calls(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[collection]
}

// TotalCalls returns the number of calls across all collections.
func (m *MemorySource) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// ResetCalls zeroes every call counter.
func (m *MemorySource) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.calls)
}

// Query implements Source.
func (m *MemorySource) Query(ctx context.Context, collection string, where ...Predicate) ([]Document, error) {
	if err := m.enter(ctx, collection); err != nil {
		return nil, &QueryError{Collection: collection, Op: "query", Where: describe(where), Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Document, 0)
	for _, d := range m.collections[collection] {
		if matchesAll(d, where) {
			out = append(out, cloneDocument(d))
		}
	}
	return out, nil
}

// Lookup implements Source.
func (m *MemorySource) Lookup(ctx context.Context, collection, id string) (Document, error) {
	if err := m.enter(ctx, collection); err != nil {
		return Document{}, &QueryError{Collection: collection, Op: "lookup", ID: id, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.collections[collection] {
		if d.ID == id {
			return cloneDocument(d), nil
		}
	}
	return Document{}, &QueryError{Collection: collection, Op: "lookup", ID: id, Err: ErrNotFound}
}

// Ping implements Pinger. It never fails.
func (m *MemorySource) Ping(ctx context.Context) error {
	return ctx.Err()
}

// enter counts the call, runs the hook, and returns any injected fault.
func (m *MemorySource) enter(ctx context.Context, collection string) error {
	m.mu.Lock()
	m.calls[collection]++
	hook := m.onCall
	fault := m.faults[collection]
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, collection)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fault
}

func matchesAll(d Document, where []Predicate) bool {
	for _, p := range where {
		if !p.Matches(d) {
			return false
		}
	}
	return true
}

func cloneDocument(d Document) Document {
	return Document{ID: d.ID, Fields: maps.Clone(d.Fields)}
}

var (
	_ Source = (*MemorySource)(nil)
	_ Pinger = (*MemorySource)(nil)
)
