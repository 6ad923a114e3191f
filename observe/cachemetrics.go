package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheMetrics forwards cache events to OpenTelemetry counters. It satisfies
// the cache package's Metrics interface.
type CacheMetrics struct {
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	evictions   metric.Int64Counter
	expirations metric.Int64Counter
	opt         metric.AddOption
}

// NewCacheMetrics creates the cache.* counters on meter. The name is attached
// to every data point as cache.name.
func NewCacheMetrics(meter metric.Meter, name string) (*CacheMetrics, error) {
	m := &CacheMetrics{
		opt: metric.WithAttributes(attribute.String("cache.name", name)),
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.hits, "cache.hits", "Reads served from the cache"},
		{&m.misses, "cache.misses", "Reads not served from the cache"},
		{&m.evictions, "cache.evictions", "Entries removed to respect the size bound"},
		{&m.expirations, "cache.expirations", "Entries removed after their TTL elapsed"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}
	return m, nil
}

// Hit records a cache hit.
func (m *CacheMetrics) Hit() { m.hits.Add(context.Background(), 1, m.opt) }

// Miss records a cache miss.
func (m *CacheMetrics) Miss() { m.misses.Add(context.Background(), 1, m.opt) }

// Eviction records a size-bound eviction.
func (m *CacheMetrics) Eviction() { m.evictions.Add(context.Background(), 1, m.opt) }

// Expire records an expired entry removal.
func (m *CacheMetrics) Expire() { m.expirations.Add(context.Background(), 1, m.opt) }
