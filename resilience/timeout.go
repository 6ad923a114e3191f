package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Timeout bounds a single attempt.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a Timeout. Non-positive durations default to 30s.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = 30 * time.Second
	}
	return &Timeout{d: d}
}

// Duration returns the configured bound.
func (t *Timeout) Duration() time.Duration {
	return t.d
}

// Execute runs op with a deadline. When the deadline fires first the result
// is ErrTimeout, even if op has not returned yet.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %w", ErrTimeout, t.d, err)
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, t.d)
		}
		return ctx.Err()
	}
}
