package health

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// Timeout bounds one CheckAll run. Default: 10s
	Timeout time.Duration

	// Parallel runs checks concurrently.
	Parallel bool
}

// DefaultAggregatorConfig returns a parallel configuration with a 10s timeout.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{Timeout: 10 * time.Second, Parallel: true}
}

// Aggregator runs a set of named checkers.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - A checker that misses the deadline yields an unhealthy result carrying
//     ErrCheckTimeout; its goroutine is left to finish on its own.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewAggregator creates an aggregator. Without a config it uses
// DefaultAggregatorConfig.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := DefaultAggregatorConfig()
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = 10 * time.Second
		}
	}
	return &Aggregator{
		config:   cfg,
		checkers: make(map[string]Checker),
	}
}

// Register adds or replaces a checker. Names keep their first registration
// position.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Unregister removes a checker.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.checkers, name)
	a.order = slices.DeleteFunc(a.order, func(n string) bool { return n == name })
}

// CheckerNames returns registered names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.order)
}

// Check runs one named checker.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()
	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return run(ctx, checker), nil
}

// CheckAll runs every registered checker and returns results by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := maps.Clone(a.checkers)
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if !a.config.Parallel {
		for name, checker := range checkers {
			results[name] = run(ctx, checker)
		}
		return results
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, checker := range checkers {
		wg.Go(func() {
			result := run(ctx, checker)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		})
	}
	wg.Wait()
	return results
}

// OverallStatus returns the worst status among results. No results is
// healthy.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, r := range results {
		overall = max(overall, r.Status)
	}
	return overall
}

func run(ctx context.Context, checker Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		done <- checker.Check(ctx)
	}()

	select {
	case result := <-done:
		result.Duration = time.Since(start)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

// Checker exposes the aggregator as a single checker named "aggregate".
func (a *Aggregator) Checker() Checker {
	return NewCheckerFunc("aggregate", func(ctx context.Context) Result {
		results := a.CheckAll(ctx)
		status := a.OverallStatus(results)

		details := make(map[string]any, len(results))
		for name, r := range results {
			details[name] = map[string]any{
				"status":   r.Status.String(),
				"message":  r.Message,
				"duration": r.Duration.String(),
			}
		}

		message := "all checks passed"
		switch status {
		case StatusDegraded:
			message = "some checks degraded"
		case StatusUnhealthy:
			message = "some checks failed"
		}
		return Result{Status: status, Message: message, Details: details, Timestamp: time.Now()}
	})
}
