package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLivenessHandler(t *testing.T) {
	rec := serve(t, LivenessHandler(), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("liveness = %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		status   Status
		wantCode int
		wantBody string
	}{
		{StatusHealthy, http.StatusOK, "OK"},
		{StatusDegraded, http.StatusOK, "DEGRADED"},
		{StatusUnhealthy, http.StatusServiceUnavailable, "UNHEALTHY"},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			agg := NewAggregator()
			agg.Register("c", fixed(tt.status))

			rec := serve(t, ReadinessHandler(agg), "/readyz")
			if rec.Code != tt.wantCode || rec.Body.String() != tt.wantBody {
				t.Errorf("readiness = %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantCode, tt.wantBody)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cache", fixed(StatusDegraded))
	agg.Register("store", NewCheckerFunc("store", func(context.Context) Result {
		return Unhealthy("unreachable", ErrCheckFailed)
	}))

	rec := serve(t, DetailedHandler(agg), "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %d, want 503", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "unhealthy" || resp.Timestamp == "" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Checks["cache"].Status != "degraded" {
		t.Errorf("cache check = %+v", resp.Checks["cache"])
	}
	if resp.Checks["store"].Error != ErrCheckFailed.Error() {
		t.Errorf("store error = %q", resp.Checks["store"].Error)
	}
}

func TestSingleCheckHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cache", fixed(StatusHealthy))

	rec := serve(t, SingleCheckHandler(agg, "cache"), "/health/cache")
	if rec.Code != http.StatusOK {
		t.Errorf("Code = %d, want 200", rec.Code)
	}

	rec = serve(t, SingleCheckHandler(agg, "missing"), "/health/missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown check Code = %d, want 404", rec.Code)
	}
}

func TestRegisterHandlers(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cache", fixed(StatusHealthy))
	mux := http.NewServeMux()
	RegisterHandlers(mux, agg)

	for _, path := range []string{"/healthz", "/readyz", "/health", "/health/cache"} {
		if rec := serve(t, mux, path); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
	if rec := serve(t, mux, "/health/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /health/missing = %d, want 404", rec.Code)
	}
}
