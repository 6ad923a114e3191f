package resilience

import (
	"context"
	"sync"
	"time"
)

// Executor composes resilience patterns. A nil *Executor runs operations
// directly.
type Executor struct {
	circuitBreaker *CircuitBreaker
	retry          *Retry
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor from options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.circuitBreaker = cb }
}

// WithRetry adds retries.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithRateLimiter adds rate limiting.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) { e.rateLimiter = rl }
}

// WithBulkhead adds a concurrency cap.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = NewTimeout(d) }
}

// CircuitBreaker returns the configured breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker {
	if e == nil {
		return nil
	}
	return e.circuitBreaker
}

// Bulkhead returns the configured bulkhead, or nil.
func (e *Executor) Bulkhead() *Bulkhead {
	if e == nil {
		return nil
	}
	return e.bulkhead
}

// Execute runs op through the configured patterns, outermost first:
// rate limiter, bulkhead, circuit breaker, retry, timeout. Each retry
// attempt gets its own timeout; the breaker sees the retried call as one
// outcome.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	if e == nil {
		return op(ctx)
	}

	run := op
	if e.timeout != nil {
		run = wrap(run, e.timeout.Execute)
	}
	if e.retry != nil {
		run = wrap(run, e.retry.Execute)
	}
	if e.circuitBreaker != nil {
		run = wrap(run, e.circuitBreaker.Execute)
	}
	if e.bulkhead != nil {
		run = wrap(run, e.bulkhead.Execute)
	}
	if e.rateLimiter != nil {
		run = wrap(run, e.rateLimiter.Execute)
	}
	return run(ctx)
}

func wrap(inner func(context.Context) error, guard func(context.Context, func(context.Context) error) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return guard(ctx, inner)
	}
}

// Do runs op through e and returns its value. Results from attempts that
// finish after their deadline are discarded.
func Do[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	var (
		mu  sync.Mutex
		out T
	)
	err := e.Execute(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		if err := ctx.Err(); err != nil {
			return err
		}
		out = v
		return nil
	})

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
