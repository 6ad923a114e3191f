package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Probe timeouts.
const (
	readinessTimeout = 5 * time.Second
	detailTimeout    = 10 * time.Second
)

// HealthResponse is the body of the detailed endpoint.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is one check in a HealthResponse.
type CheckResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func newCheckResponse(r Result) CheckResponse {
	resp := CheckResponse{
		Status:   r.Status.String(),
		Message:  r.Message,
		Duration: r.Duration.String(),
		Details:  r.Details,
	}
	if r.Error != nil {
		resp.Error = r.Error.Error()
	}
	return resp
}

// httpStatus maps degraded to 200: a full cache still serves reads.
func httpStatus(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// LivenessHandler always answers 200 OK.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler runs every check and answers OK, DEGRADED or UNHEALTHY.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := agg.OverallStatus(agg.CheckAll(ctx))

		body := "OK"
		switch status {
		case StatusDegraded:
			body = "DEGRADED"
		case StatusUnhealthy:
			body = "UNHEALTHY"
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(httpStatus(status))
		_, _ = w.Write([]byte(body))
	}
}

// DetailedHandler runs every check and answers with a HealthResponse.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), detailTimeout)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		resp := HealthResponse{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckResponse, len(results)),
		}
		for name, result := range results {
			resp.Checks[name] = newCheckResponse(result)
		}
		writeJSON(w, httpStatus(status), resp)
	}
}

// SingleCheckHandler runs one named check. An empty name is taken from the
// {name} path value. Unknown names answer 404.
func SingleCheckHandler(agg *Aggregator, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		check := name
		if check == "" {
			check = r.PathValue("name")
		}
		result, err := agg.Check(ctx, check)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, httpStatus(result.Status), newCheckResponse(result))
	}
}

// RegisterHandlers mounts /healthz, /readyz, /health and /health/{name} on mux.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(agg))
	mux.HandleFunc("/health", DetailedHandler(agg))
	mux.HandleFunc("GET /health/{name}", SingleCheckHandler(agg, ""))
}
