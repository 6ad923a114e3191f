package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	errDown := errors.New("down")

	tests := []struct {
		name   string
		result Result
		status Status
		err    error
	}{
		{"healthy", Healthy("ok"), StatusHealthy, nil},
		{"degraded", Degraded("slow"), StatusDegraded, nil},
		{"unhealthy", Unhealthy("broken", errDown), StatusUnhealthy, errDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.status {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.status)
			}
			if !errors.Is(tt.result.Error, tt.err) {
				t.Errorf("Error = %v, want %v", tt.result.Error, tt.err)
			}
			if tt.result.Timestamp.IsZero() {
				t.Error("Timestamp should be set")
			}
		})
	}
}

func TestResult_WithDetails(t *testing.T) {
	r := Healthy("ok").WithDetails(map[string]any{"entries": 3})
	if r.Details["entries"] != 3 {
		t.Errorf("Details = %v", r.Details)
	}
}

func TestCheckerFunc(t *testing.T) {
	c := NewCheckerFunc("store", func(ctx context.Context) Result {
		return Degraded("slow")
	})

	if c.Name() != "store" {
		t.Errorf("Name() = %q, want store", c.Name())
	}
	if got := c.Check(context.Background()); got.Status != StatusDegraded {
		t.Errorf("Check().Status = %v, want degraded", got.Status)
	}
}
