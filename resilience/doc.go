// Package resilience guards calls to the remote document store.
//
// Every HTTP round trip made by the data-source client passes through an
// Executor composed from these patterns:
//
//   - RateLimiter: token bucket. Either rejects, waits, or (via Allow) lets the
//     caller decide what to do when the budget is exceeded.
//   - Bulkhead: caps the number of requests in flight.
//   - CircuitBreaker: stops calling a store that keeps failing and probes it
//     again after a cool-down.
//   - Retry: retries errors selected by RetryIf with backoff.
//   - Timeout: bounds a single attempt.
//
// Usage:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 8})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{RetryIf: isTransient})),
//	    resilience.WithTimeout(10*time.Second),
//	)
//
//	doc, err := resilience.Do(ctx, exec, func(ctx context.Context) ([]byte, error) {
//	    return fetch(ctx, url)
//	})
package resilience
