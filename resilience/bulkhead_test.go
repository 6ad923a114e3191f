package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := b.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := b.Acquire(ctx); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire() error = %v, want %v", err, ErrBulkheadFull)
	}

	m := b.Metrics()
	if m.Active != 2 || m.Available != 0 || m.Rejected != 1 {
		t.Errorf("metrics = %+v", m)
	}

	b.Release()
	if err := b.Acquire(ctx); err != nil {
		t.Errorf("Acquire() after Release error = %v", err)
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	ctx := context.Background()
	_ = b.Acquire(ctx)

	go func() {
		time.Sleep(10 * time.Millisecond)
		b.Release()
	}()

	if err := b.Acquire(ctx); err != nil {
		t.Errorf("Acquire() error = %v, want a slot once released", err)
	}
}

func TestBulkhead_CapsConcurrency(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 3, MaxWait: time.Second})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(ctx, func(context.Context) error {
				time.Sleep(5 * time.Millisecond)
				return nil
			})
		}()
	}
	wg.Wait()

	m := b.Metrics()
	if m.MaxActive > 3 {
		t.Errorf("MaxActive = %d, want <= 3", m.MaxActive)
	}
	if m.Active != 0 {
		t.Errorf("Active = %d after all calls finished", m.Active)
	}
}

func TestBulkhead_ContextCanceled(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Minute})
	_ = b.Acquire(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() error = %v, want canceled", err)
	}
}

func TestBulkhead_ReportsQueueing(t *testing.T) {
	type report struct {
		waited time.Duration
		err    error
	}
	var (
		mu      sync.Mutex
		reports []report
	)
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 1,
		MaxWait:       time.Second,
		OnAcquire: func(_ context.Context, waited time.Duration, err error) {
			mu.Lock()
			reports = append(reports, report{waited, err})
			mu.Unlock()
		},
	})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Release()
	}()
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("queued Acquire() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reports) != 1 {
		t.Fatalf("reports = %d, want 1 (immediate admissions are not reported)", len(reports))
	}
	if reports[0].err != nil || reports[0].waited <= 0 {
		t.Errorf("report = %+v, want a positive wait and no error", reports[0])
	}

	m := b.Metrics()
	if m.Queued != 1 || m.WaitTime != reports[0].waited || m.AverageWait() != reports[0].waited {
		t.Errorf("metrics = %+v", m)
	}
}

func TestBulkhead_ReportsRejection(t *testing.T) {
	var got error
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 1,
		OnAcquire: func(_ context.Context, _ time.Duration, err error) {
			got = err
		},
	})
	_ = b.Acquire(context.Background())

	if err := b.Acquire(context.Background()); !errors.Is(err, ErrBulkheadFull) {
		t.Fatalf("Acquire() error = %v, want %v", err, ErrBulkheadFull)
	}
	if !errors.Is(got, ErrBulkheadFull) {
		t.Errorf("reported error = %v, want %v", got, ErrBulkheadFull)
	}
	if m := b.Metrics(); m.Queued != 0 || m.Rejected != 1 {
		t.Errorf("metrics = %+v, want an unqueued rejection", m)
	}
}
