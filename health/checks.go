package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/dashcache/cache"
	"github.com/jonwraymond/dashcache/datasource"
	"github.com/jonwraymond/dashcache/resilience"
)

// CacheChecker reports on a cache engine. A bounded engine at capacity is
// degraded: every new key evicts a live entry.
type CacheChecker struct {
	engine *cache.Engine
}

// NewCacheChecker creates a checker for engine.
func NewCacheChecker(engine *cache.Engine) *CacheChecker {
	return &CacheChecker{engine: engine}
}

// Name implements Checker.
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check implements Checker.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context done", err)
	}

	stats := c.engine.Stats()
	details := map[string]any{
		"entries":     stats.Size,
		"max_entries": stats.MaxSize,
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"evictions":   stats.Evictions,
		"expirations": stats.Expirations,
		"hit_ratio":   stats.HitRatio(),
	}

	if stats.MaxSize > 0 && stats.Size >= stats.MaxSize {
		return Degraded(fmt.Sprintf("cache full: %d/%d entries", stats.Size, stats.MaxSize)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d entries", stats.Size)).WithDetails(details)
}

// PingChecker reports whether a document store answers its ping.
type PingChecker struct {
	name   string
	pinger datasource.Pinger
}

// NewPingChecker creates a checker that pings p.
func NewPingChecker(name string, p datasource.Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

// Name implements Checker.
func (c *PingChecker) Name() string {
	return c.name
}

// Check implements Checker.
func (c *PingChecker) Check(ctx context.Context) Result {
	if err := c.pinger.Ping(ctx); err != nil {
		return Unhealthy(fmt.Sprintf("%s unreachable", c.name), fmt.Errorf("%w: %w", ErrCheckFailed, err))
	}
	return Healthy(fmt.Sprintf("%s reachable", c.name))
}

// CircuitChecker reports a circuit breaker's state: closed is healthy,
// half-open degraded and open unhealthy.
type CircuitChecker struct {
	name    string
	breaker *resilience.CircuitBreaker
}

// NewCircuitChecker creates a checker for breaker.
func NewCircuitChecker(name string, breaker *resilience.CircuitBreaker) *CircuitChecker {
	return &CircuitChecker{name: name, breaker: breaker}
}

// Name implements Checker.
func (c *CircuitChecker) Name() string {
	return c.name + "_circuit"
}

// Check implements Checker.
func (c *CircuitChecker) Check(_ context.Context) Result {
	m := c.breaker.Metrics()
	details := map[string]any{
		"state":    m.State.String(),
		"failures": m.Failures,
		"rejected": m.Rejected,
	}
	if !m.LastFailure.IsZero() {
		details["last_failure"] = m.LastFailure
	}

	switch m.State {
	case resilience.StateOpen:
		return Unhealthy(fmt.Sprintf("%s circuit open", c.name), resilience.ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded(fmt.Sprintf("%s circuit probing", c.name)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("%s circuit closed", c.name)).WithDetails(details)
	}
}

// BulkheadChecker reports how busy a bulkhead is. It is degraded while every
// slot is taken or once a request has been turned away.
type BulkheadChecker struct {
	name     string
	bulkhead *resilience.Bulkhead
}

// NewBulkheadChecker creates a checker for bulkhead.
func NewBulkheadChecker(name string, bulkhead *resilience.Bulkhead) *BulkheadChecker {
	return &BulkheadChecker{name: name, bulkhead: bulkhead}
}

// Name implements Checker.
func (c *BulkheadChecker) Name() string {
	return c.name + "_slots"
}

// Check implements Checker.
func (c *BulkheadChecker) Check(_ context.Context) Result {
	m := c.bulkhead.Metrics()
	details := map[string]any{
		"active":       m.Active,
		"max_active":   m.MaxActive,
		"capacity":     m.MaxConcurrent,
		"queued":       m.Queued,
		"average_wait": m.AverageWait().String(),
		"rejected":     m.Rejected,
	}

	switch {
	case m.Rejected > 0:
		return Degraded(fmt.Sprintf("%s turned away %d requests", c.name, m.Rejected)).WithDetails(details)
	case m.Available <= 0:
		return Degraded(fmt.Sprintf("%s saturated: %d/%d slots", c.name, m.Active, m.MaxConcurrent)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("%d/%d slots in use", m.Active, m.MaxConcurrent)).WithDetails(details)
	}
}

var (
	_ Checker = (*BulkheadChecker)(nil)
	_ Checker = (*CacheChecker)(nil)
	_ Checker = (*PingChecker)(nil)
	_ Checker = (*CircuitChecker)(nil)
)
