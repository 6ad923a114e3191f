package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/dashcache/cache"
	"github.com/jonwraymond/dashcache/config"
	"github.com/jonwraymond/dashcache/datasource"
	"github.com/jonwraymond/dashcache/health"
	"github.com/jonwraymond/dashcache/observe"
	"github.com/jonwraymond/dashcache/resilience"
	"github.com/jonwraymond/dashcache/tracker"
)

// app is the cache stack assembled from a config.
type app struct {
	cfg     config.Config
	obs     observe.Observer
	engine  *cache.Engine
	src     datasource.Source
	breaker *resilience.CircuitBreaker
	slots   *resilience.Bulkhead
	svc     *tracker.Service
}

func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig(logOut))
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	a := &app{cfg: cfg, obs: obs}
	logger := obs.Logger()

	cm, err := observe.NewCacheMetrics(obs.Meter(), "dashboard")
	if err != nil {
		return nil, fmt.Errorf("cache metrics: %w", err)
	}
	a.engine, err = cache.New(cfg.CacheConfig(), cache.WithMetrics(cm))
	if err != nil {
		return nil, err
	}
	rt, err := cache.NewReadThrough(a.engine, cache.WithCoalescing(cfg.Cache.Coalesce))
	if err != nil {
		return nil, err
	}

	name := "demo"
	if cfg.UsesRemoteStore() {
		hc, err := cfg.HTTPConfig()
		if err != nil {
			return nil, err
		}
		hs, err := datasource.NewHTTPSource(hc)
		if err != nil {
			return nil, err
		}
		a.src, name = hs, "http"
		a.breaker, a.slots = hs.Executor().CircuitBreaker(), hs.Executor().Bulkhead()
	} else {
		a.src = demoSource()
		logger.Debug(ctx, "no store configured, serving demo data")
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}
	a.src = datasource.Instrument(a.src, name, mw)

	opts := append(cfg.TrackerOptions(), tracker.WithLogger(logger))
	a.svc, err = tracker.NewService(rt, a.src, opts...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) close(ctx context.Context) error {
	return a.obs.Shutdown(ctx)
}

func (a *app) healthAggregator() *health.Aggregator {
	agg := health.NewAggregator()
	agg.Register("cache", health.NewCacheChecker(a.engine))
	if p, ok := a.src.(datasource.Pinger); ok {
		agg.Register("store", health.NewPingChecker("store", p))
	}
	if a.breaker != nil {
		agg.Register("store_circuit", health.NewCircuitChecker("store", a.breaker))
	}
	if a.slots != nil {
		agg.Register("store_slots", health.NewBulkheadChecker("store", a.slots))
	}
	return agg
}

func (a *app) handler() http.Handler {
	mux := http.NewServeMux()
	health.RegisterHandlers(mux, a.healthAggregator())
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (a *app) printStats(w io.Writer) {
	s := a.engine.Stats()

	size := humanize.Comma(int64(s.Size))
	if s.MaxSize > 0 {
		size += " / " + humanize.Comma(int64(s.MaxSize))
	}
	fmt.Fprintf(w, "\ncache: %s entries, %s hits, %s misses (%.0f%% hit ratio), %s evictions, %s expirations\n",
		size,
		humanize.Comma(int64(s.Hits)),
		humanize.Comma(int64(s.Misses)),
		s.HitRatio()*100,
		humanize.Comma(int64(s.Evictions)),
		humanize.Comma(int64(s.Expirations)),
	)

	entries := a.engine.Snapshot()
	if len(entries) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTORED\tEXPIRES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, humanize.Time(e.StoredAt), humanize.Time(e.ExpiresAt))
	}
	_ = tw.Flush()
}
