package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/dashcache/cache"
	"github.com/jonwraymond/dashcache/datasource"
	"github.com/jonwraymond/dashcache/resilience"
)

func TestCacheChecker(t *testing.T) {
	engine, err := cache.New(cache.Config{TTL: time.Minute, MaxSize: 2})
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	c := NewCacheChecker(engine)
	ctx := context.Background()

	engine.Set("projects|", 1, 0)
	r := c.Check(ctx)
	if r.Status != StatusHealthy {
		t.Errorf("half-full cache = %v, want healthy", r.Status)
	}
	if r.Details["entries"] != 1 || r.Details["max_entries"] != 2 {
		t.Errorf("Details = %v", r.Details)
	}

	engine.Set("users|", 2, 0)
	if r := c.Check(ctx); r.Status != StatusDegraded {
		t.Errorf("full cache = %v, want degraded", r.Status)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if r := c.Check(cancelled); r.Status != StatusUnhealthy {
		t.Errorf("cancelled check = %v, want unhealthy", r.Status)
	}
}

func TestCacheChecker_Unbounded(t *testing.T) {
	engine, _ := cache.New(cache.DefaultConfig())
	for _, k := range []string{"a", "b", "c"} {
		engine.Set(k, k, 0)
	}
	if r := NewCacheChecker(engine).Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("unbounded cache = %v, want healthy", r.Status)
	}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("store", datasource.NewMemorySource())
	if ok.Name() != "store" {
		t.Errorf("Name() = %q", ok.Name())
	}
	if r := ok.Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("reachable store = %v, want healthy", r.Status)
	}

	down := NewPingChecker("store", pingFunc(func(context.Context) error {
		return datasource.ErrUnavailable
	}))
	r := down.Check(context.Background())
	if r.Status != StatusUnhealthy {
		t.Errorf("unreachable store = %v, want unhealthy", r.Status)
	}
	if !errors.Is(r.Error, ErrCheckFailed) || !errors.Is(r.Error, datasource.ErrUnavailable) {
		t.Errorf("Error = %v, want ErrCheckFailed wrapping ErrUnavailable", r.Error)
	}
}

func TestCircuitChecker(t *testing.T) {
	now := time.Unix(0, 0)
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: time.Minute,
		Now:          func() time.Time { return now },
	})
	c := NewCircuitChecker("store", cb)
	ctx := context.Background()

	if c.Name() != "store_circuit" {
		t.Errorf("Name() = %q", c.Name())
	}
	if r := c.Check(ctx); r.Status != StatusHealthy {
		t.Errorf("closed = %v, want healthy", r.Status)
	}

	_ = cb.Execute(ctx, func(context.Context) error { return errors.New("boom") })
	r := c.Check(ctx)
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, resilience.ErrCircuitOpen) {
		t.Errorf("open = %+v, want unhealthy", r)
	}
	if r.Details["state"] != "open" {
		t.Errorf("Details[state] = %v", r.Details["state"])
	}

	now = now.Add(time.Minute)
	if r := c.Check(ctx); r.Status != StatusDegraded {
		t.Errorf("half-open = %v, want degraded", r.Status)
	}
}

func TestBulkheadChecker(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 2})
	c := NewBulkheadChecker("store", b)
	ctx := context.Background()

	if c.Name() != "store_slots" {
		t.Errorf("Name() = %q", c.Name())
	}

	_ = b.Acquire(ctx)
	if r := c.Check(ctx); r.Status != StatusHealthy || r.Details["active"] != 1 {
		t.Errorf("one slot in use = %v %v, want healthy", r.Status, r.Details)
	}

	_ = b.Acquire(ctx)
	if r := c.Check(ctx); r.Status != StatusDegraded {
		t.Errorf("all slots in use = %v, want degraded", r.Status)
	}

	b.Release()
	_ = b.Acquire(ctx)
	_ = b.Acquire(ctx)
	b.Release()
	b.Release()
	r := c.Check(ctx)
	if r.Status != StatusDegraded || r.Details["rejected"] != int64(1) {
		t.Errorf("after a rejection = %v %v, want degraded", r.Status, r.Details)
	}
}
