package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func failing(context.Context) error    { return errBoom }
func succeeding(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	clock := newManualClock()
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3, Now: clock.Now})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, failing); !errors.Is(err, errBoom) {
			t.Fatalf("Execute() error = %v, want %v", err, errBoom)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Errorf("open circuit: err = %v, called = %v", err, called)
	}
	if cb.Metrics().Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", cb.Metrics().Rejected)
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2})
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, succeeding)
	_ = cb.Execute(ctx, failing)

	if cb.State() != StateClosed {
		t.Errorf("State() = %v, failures are counted consecutively", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := newManualClock()
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: time.Minute,
		Now:          clock.Now,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	clock.Advance(30 * time.Second)
	if cb.State() != StateOpen {
		t.Fatal("circuit should stay open before the reset timeout")
	}

	clock.Advance(30 * time.Second)
	if cb.State() != StateHalfOpen {
		t.Fatalf("State() = %v, want half-open", cb.State())
	}
	if err := cb.Execute(ctx, succeeding); err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed after a good probe", cb.State())
	}

	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition[%d] = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	clock := newManualClock()
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Second, Now: clock.Now})
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	clock.Advance(time.Second)
	_ = cb.Execute(ctx, failing)

	if cb.State() != StateOpen {
		t.Errorf("State() = %v, want open after failed probe", cb.State())
	}
	clock.Advance(500 * time.Millisecond)
	if cb.State() != StateOpen {
		t.Error("reset timeout restarts when the probe fails")
	}
}

func TestCircuitBreaker_IsFailureFilter(t *testing.T) {
	notFound := errors.New("not found")
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return err != nil && !errors.Is(err, notFound) },
	})

	_ = cb.Execute(context.Background(), func(context.Context) error { return notFound })
	if cb.State() != StateClosed {
		t.Error("filtered errors must not open the circuit")
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1})
	_ = cb.Execute(context.Background(), failing)
	cb.Reset()
	if cb.State() != StateClosed || cb.Metrics().Failures != 0 {
		t.Errorf("after Reset: %+v", cb.Metrics())
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(42):     "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
