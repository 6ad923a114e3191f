package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimeout_Fires(t *testing.T) {
	to := NewTimeout(20 * time.Millisecond)

	err := to.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want %v", err, ErrTimeout)
	}
}

func TestTimeout_PassesThrough(t *testing.T) {
	to := NewTimeout(time.Second)

	if err := to.Execute(context.Background(), succeeding); err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if err := to.Execute(context.Background(), failing); err != errBoom {
		t.Errorf("Execute() error = %v, want %v unchanged", err, errBoom)
	}
}

func TestTimeout_ParentCancel(t *testing.T) {
	to := NewTimeout(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := to.Execute(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) || errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want canceled and not a timeout", err)
	}
}

func TestNewTimeout_Default(t *testing.T) {
	if d := NewTimeout(0).Duration(); d != 30*time.Second {
		t.Errorf("Duration() = %v, want 30s", d)
	}
}
