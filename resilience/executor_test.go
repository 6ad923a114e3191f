package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecutor_Nil(t *testing.T) {
	var e *Executor
	called := false
	if err := e.Execute(context.Background(), func(context.Context) error { called = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("nil executor should run the operation directly")
	}
	if e.CircuitBreaker() != nil || e.Bulkhead() != nil {
		t.Error("nil executor has no components")
	}
}

func TestExecutor_RetryInsideBreaker(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2})
	e := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
	)

	attempts := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		attempts++
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if cb.Metrics().Failures != 1 {
		t.Errorf("breaker failures = %d, a retried call counts once", cb.Metrics().Failures)
	}
}

func TestExecutor_TimeoutPerAttempt(t *testing.T) {
	e := NewExecutor(
		WithRetry(NewRetry(RetryConfig{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
			RetryIf:      func(err error) bool { return errors.Is(err, ErrTimeout) },
		})),
		WithTimeout(20*time.Millisecond),
	)

	var attempts atomic.Int32
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		if attempts.Add(1) == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		t.Errorf("Execute() error = %v, second attempt should succeed", err)
	}
}

func TestExecutor_RateLimiterOutermost(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, Now: newManualClock().Now})
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	e := NewExecutor(WithRateLimiter(rl), WithBulkhead(b))

	_ = e.Execute(context.Background(), succeeding)
	err := e.Execute(context.Background(), succeeding)
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Execute() error = %v, want %v", err, ErrRateLimitExceeded)
	}
	if b.Metrics().Rejected != 0 {
		t.Error("a rate-limited call must not reach the bulkhead")
	}
}

func TestDo(t *testing.T) {
	e := NewExecutor(WithRetry(NewRetry(RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})))

	calls := 0
	got, err := Do(context.Background(), e, func(context.Context) ([]string, error) {
		calls++
		if calls == 1 {
			return nil, errBoom
		}
		return []string{"P1", "P2"}, nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if len(got) != 2 || got[0] != "P1" {
		t.Errorf("Do() = %v", got)
	}

	n, err := Do(context.Background(), nil, func(context.Context) (int, error) { return 0, errBoom })
	if err != errBoom || n != 0 {
		t.Errorf("Do() = %d, %v", n, err)
	}
}

func TestIsRejection(t *testing.T) {
	if !IsRejection(ErrCircuitOpen) || !IsRejection(ErrBulkheadFull) {
		t.Error("guard errors are rejections")
	}
	if IsRejection(ErrTimeout) || IsRejection(errBoom) {
		t.Error("timeouts and operation errors are not rejections")
	}
}
