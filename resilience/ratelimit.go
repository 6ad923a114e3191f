package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// Rate is the number of operations allowed per second.
	// Default: 100
	Rate float64

	// Burst is the bucket size. Default: 10
	Burst int

	// WaitOnLimit makes Execute wait for a token instead of failing.
	WaitOnLimit bool

	// MaxWait caps a single wait. Default: 1 second
	MaxWait time.Duration

	// Now overrides the clock. Default: time.Now
	Now func() time.Time
}

// RateLimiter is a token bucket.
type RateLimiter struct {
	config RateLimiterConfig

	mu          sync.Mutex
	tokens      float64
	lastRefresh time.Time
	denied      uint64
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &RateLimiter{
		config:      config,
		tokens:      float64(config.Burst),
		lastRefresh: config.Now(),
	}
}

// Allow takes one token if available.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN takes n tokens if available. Denials are counted.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens >= float64(n) {
		rl.tokens -= float64(n)
		return true
	}
	rl.denied++
	return false
}

// Wait blocks until a token is available, MaxWait elapses, or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rl.Allow() {
		return nil
	}

	rl.mu.Lock()
	wait := time.Duration((1 - rl.tokens) / rl.config.Rate * float64(time.Second))
	rl.mu.Unlock()
	// Slack for float rounding in the refill.
	wait = min(wait+time.Millisecond, rl.config.MaxWait)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		if rl.Allow() {
			return nil
		}
		return ErrRateLimitExceeded
	}
}

// Execute runs op if a token is available, waiting first when WaitOnLimit is set.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.config.WaitOnLimit {
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	} else if !rl.Allow() {
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

func (rl *RateLimiter) refillLocked() {
	now := rl.config.Now()
	elapsed := now.Sub(rl.lastRefresh)
	if elapsed <= 0 {
		return
	}
	rl.lastRefresh = now
	rl.tokens = min(rl.tokens+elapsed.Seconds()*rl.config.Rate, float64(rl.config.Burst))
}

// Tokens returns the tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

// Denied returns how many Allow calls found the bucket empty.
func (rl *RateLimiter) Denied() uint64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.denied
}

// Reset refills the bucket and clears the denial count.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = float64(rl.config.Burst)
	rl.lastRefresh = rl.config.Now()
	rl.denied = 0
}
