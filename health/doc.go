// Package health reports whether the dashboard cache and its document store
// can serve reads.
//
// A Checker reports one component as Healthy, Degraded or Unhealthy. The
// package ships checkers for the cache engine (degraded while a bounded store
// is full and evicting), the document store's ping endpoint, and a circuit
// breaker guarding the store.
//
// An Aggregator runs registered checkers under one deadline and folds their
// results into an overall status:
//
//	agg := health.NewAggregator()
//	agg.Register("cache", health.NewCacheChecker(engine))
//	agg.Register("store", health.NewPingChecker("store", src))
//	agg.Register("circuit", health.NewCircuitChecker("store", breaker))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//
// RegisterHandlers mounts /healthz (liveness), /readyz (plain-text readiness)
// and /health (JSON detail).
package health
