package resilience

import (
	"context"
	"sync"
	"time"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of slots. Default: 10
	MaxConcurrent int

	// MaxWait is how long Acquire waits for a slot. Zero fails immediately.
	MaxWait time.Duration

	// OnAcquire, if set, is called after every Acquire that found no free
	// slot, with the time spent waiting and the outcome (nil, ErrBulkheadFull
	// or the context error). Immediate admissions are not reported.
	OnAcquire func(ctx context.Context, waited time.Duration, err error)

	// Now overrides the clock used to measure waits. Default: time.Now
	Now func() time.Time
}

// Bulkhead caps concurrent operations against one dependency.
type Bulkhead struct {
	config BulkheadConfig
	sem    chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
	queued    int64
	waitTime  time.Duration
	rejected  int64
}

// NewBulkhead creates a bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Bulkhead{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Acquire takes a slot, queueing for up to MaxWait. It returns
// ErrBulkheadFull when no slot frees up in time.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		b.settle(false, 0, nil)
		return nil
	default:
	}

	if b.config.MaxWait <= 0 {
		b.settle(false, 0, ErrBulkheadFull)
		b.report(ctx, 0, ErrBulkheadFull)
		return ErrBulkheadFull
	}

	start := b.config.Now()
	err := b.queue(ctx)
	waited := b.config.Now().Sub(start)

	b.settle(true, waited, err)
	b.report(ctx, waited, err)
	return err
}

func (b *Bulkhead) queue(ctx context.Context) error {
	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// settle records the outcome of one Acquire.
func (b *Bulkhead) settle(queued bool, waited time.Duration, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if queued {
		b.queued++
		b.waitTime += waited
	}
	switch err {
	case nil:
		b.active++
		b.maxActive = max(b.maxActive, b.active)
	case ErrBulkheadFull:
		b.rejected++
	}
}

func (b *Bulkhead) report(ctx context.Context, waited time.Duration, err error) {
	if b.config.OnAcquire != nil {
		b.config.OnAcquire(ctx, waited, err)
	}
}

// Release returns a slot taken by Acquire.
func (b *Bulkhead) Release() {
	select {
	case <-b.sem:
		b.mu.Lock()
		b.active--
		b.mu.Unlock()
	default:
	}
}

// Execute runs op inside a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()

	return op(ctx)
}

// Metrics returns a snapshot of the bulkhead's counters.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadMetrics{
		Active:        b.active,
		MaxActive:     b.maxActive,
		Available:     b.config.MaxConcurrent - b.active,
		MaxConcurrent: b.config.MaxConcurrent,
		Queued:        b.queued,
		WaitTime:      b.waitTime,
		Rejected:      b.rejected,
	}
}

// BulkheadMetrics contains bulkhead statistics.
type BulkheadMetrics struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int

	// Queued counts acquisitions that had to wait for a slot.
	Queued int64
	// WaitTime is the total time spent queueing.
	WaitTime time.Duration

	Rejected int64
}

// AverageWait returns WaitTime / Queued, or 0 before any queueing.
func (m BulkheadMetrics) AverageWait() time.Duration {
	if m.Queued == 0 {
		return 0
	}
	return m.WaitTime / time.Duration(m.Queued)
}
