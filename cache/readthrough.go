package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc loads a value from the backing source on a cache miss.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Request describes one read-through call.
type Request struct {
	// Key is the cache key of the value.
	Key string

	// Namespace is the prefix invalidated before a forced load.
	// If empty, Key is used.
	Namespace string

	// Force skips the cache lookup and reloads after invalidating Namespace.
	Force bool

	// TTL overrides the engine TTL for this value. Zero uses the default.
	TTL time.Duration
}

// ReadThrough runs cache-aside loads against an Engine.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: load errors are returned unchanged and nothing is stored.
//   - A load does not store its result if its key was invalidated after the
//     load started. Invalidations of other keys do not affect it.
type ReadThrough struct {
	engine   *Engine
	coalesce bool
	group    singleflight.Group
}

// ReadThroughOption configures a ReadThrough.
type ReadThroughOption func(*ReadThrough)

// WithCoalescing shares one load between concurrent non-forced misses on the
// same key.
func WithCoalescing(enabled bool) ReadThroughOption {
	return func(rt *ReadThrough) {
		rt.coalesce = enabled
	}
}

// NewReadThrough creates a read-through over engine.
func NewReadThrough(engine *Engine, opts ...ReadThroughOption) (*ReadThrough, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	rt := &ReadThrough{engine: engine}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

// Engine returns the underlying engine.
func (rt *ReadThrough) Engine() *Engine {
	return rt.engine
}

// Fetch returns the cached value for req.Key, or loads, stores and returns it.
// The hit result reports whether the value came from the cache.
func Fetch[T any](ctx context.Context, rt *ReadThrough, req Request, load LoadFunc[T]) (value T, hit bool, err error) {
	if req.Force {
		namespace := req.Namespace
		if namespace == "" {
			namespace = req.Key
		}
		rt.engine.InvalidatePrefix(namespace)
	} else if cached, ok := Lookup[T](rt.engine, req.Key); ok {
		return cached, true, nil
	}

	untyped := func(ctx context.Context) (any, error) {
		return load(ctx)
	}

	var loaded any
	if rt.coalesce && !req.Force {
		loaded, err = rt.shared(ctx, req, untyped)
	} else {
		loaded, err = rt.loadAndStore(ctx, req, untyped)
	}
	if err != nil {
		return value, false, err
	}

	value, _ = loaded.(T)
	return value, false, nil
}

// shared joins the in-flight load of req.Key or starts one. The load runs on a
// context detached from the caller that started it. Each caller returns when
// the load finishes or its own ctx is done.
func (rt *ReadThrough) shared(ctx context.Context, req Request, load func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := rt.group.DoChan(req.Key, func() (any, error) {
		return rt.loadAndStore(detached, req, load)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (rt *ReadThrough) loadAndStore(ctx context.Context, req Request, load func(context.Context) (any, error)) (any, error) {
	gen := rt.engine.beginFill()
	defer rt.engine.endFill(gen)

	value, err := load(ctx)
	if err != nil {
		// Don't cache errors
		return nil, err
	}

	rt.engine.StoreIfCurrent(req.Key, value, req.TTL, gen)
	return value, nil
}
