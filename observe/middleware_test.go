package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type telemetry struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	mw     *Middleware
	logs   *bytes.Buffer
}

func newTelemetry(t *testing.T) telemetry {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	var logs bytes.Buffer
	mw := NewMiddleware(NewTracer(tp.Tracer("test")), metrics, NewLoggerWithWriter("debug", &logs))
	return telemetry{spans: spans, reader: reader, mw: mw, logs: &logs}
}

func (tel telemetry) collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := tel.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMiddleware_Success(t *testing.T) {
	tel := newTelemetry(t)
	meta := QueryMeta{Source: "http", Collection: "tasks", Predicates: []string{"projectId==P1"}}

	wrapped := tel.mw.Wrap(func(context.Context, QueryMeta) (int, error) {
		return 3, nil
	})
	n, err := wrapped(context.Background(), meta)
	if err != nil || n != 3 {
		t.Fatalf("wrapped() = %d, %v", n, err)
	}

	spans := tel.spans.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "datasource.query.tasks" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("span status = %v", spans[0].Status())
	}

	rm := tel.collect(t)
	if got := sumValue(t, rm, "datasource.query.total"); got != 1 {
		t.Errorf("datasource.query.total = %d, want 1", got)
	}
	if got := sumValue(t, rm, "datasource.query.errors"); got != 0 {
		t.Errorf("datasource.query.errors = %d, want 0", got)
	}
	if findMetric(rm, "datasource.query.duration_ms") == nil {
		t.Error("datasource.query.duration_ms not recorded")
	}
	if !bytes.Contains(tel.logs.Bytes(), []byte(`"results":3`)) {
		t.Errorf("completion log missing result count: %s", tel.logs.String())
	}
}

func TestMiddleware_Error(t *testing.T) {
	tel := newTelemetry(t)
	meta := QueryMeta{Collection: "projects", Operation: OpLookup, DocumentID: "P9"}
	queryErr := errors.New("unavailable")

	wrapped := tel.mw.Wrap(func(context.Context, QueryMeta) (int, error) {
		return 0, queryErr
	})
	if _, err := wrapped(context.Background(), meta); err != queryErr {
		t.Fatalf("wrapped() error = %v, want %v unchanged", err, queryErr)
	}

	spans := tel.spans.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "datasource.lookup.projects" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status())
	}
	var flagged bool
	for _, attr := range spans[0].Attributes() {
		if string(attr.Key) == "datasource.error" {
			flagged = attr.Value.AsBool()
		}
	}
	if !flagged {
		t.Error("expected datasource.error=true")
	}

	rm := tel.collect(t)
	if got := sumValue(t, rm, "datasource.query.errors"); got != 1 {
		t.Errorf("datasource.query.errors = %d, want 1", got)
	}
	if !bytes.Contains(tel.logs.Bytes(), []byte(`"level":"warn"`)) {
		t.Errorf("failure should log at warn: %s", tel.logs.String())
	}
}

func TestMiddleware_PropagatesSpanContext(t *testing.T) {
	tel := newTelemetry(t)

	var sawSpan bool
	wrapped := tel.mw.Wrap(func(ctx context.Context, _ QueryMeta) (int, error) {
		sawSpan = trace.SpanFromContext(ctx).SpanContext().IsValid()
		return 0, nil
	})
	_, _ = wrapped(context.Background(), QueryMeta{Collection: "users"})

	if !sawSpan {
		t.Error("wrapped function should receive the span context")
	}
}

func TestMiddleware_NilComponents(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)
	wrapped := mw.Wrap(func(context.Context, QueryMeta) (int, error) { return 1, nil })
	if n, err := wrapped(context.Background(), QueryMeta{Collection: "users"}); err != nil || n != 1 {
		t.Errorf("wrapped() = %d, %v", n, err)
	}
}

func TestMiddlewareFromObserver(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("MiddlewareFromObserver(nil) error = %v, want %v", err, ErrNilObserver)
	}

	obs, err := NewObserver(context.Background(), Config{ServiceName: "dashcache"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}
	if mw.Logger() == nil {
		t.Error("middleware logger is nil")
	}
}

func TestQueryMeta(t *testing.T) {
	m := QueryMeta{Collection: "subtasks"}
	if m.Op() != OpQuery {
		t.Errorf("Op() = %q, want %q", m.Op(), OpQuery)
	}
	if m.SpanName() != "datasource.query.subtasks" {
		t.Errorf("SpanName() = %q", m.SpanName())
	}
	if err := (QueryMeta{}).Validate(); !errors.Is(err, ErrMissingCollection) {
		t.Errorf("Validate() error = %v, want %v", err, ErrMissingCollection)
	}
}

func TestCacheMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewCacheMetrics(mp.Meter("test"), "dashboard")
	if err != nil {
		t.Fatalf("NewCacheMetrics() error = %v", err)
	}

	m.Hit()
	m.Hit()
	m.Miss()
	m.Eviction()
	m.Expire()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := map[string]int64{
		"cache.hits":        2,
		"cache.misses":      1,
		"cache.evictions":   1,
		"cache.expirations": 1,
	}
	for name, v := range want {
		if got := sumValue(t, rm, name); got != v {
			t.Errorf("%s = %d, want %d", name, got, v)
		}
	}
}

func BenchmarkMiddleware_Wrap(b *testing.B) {
	mw := NewMiddleware(nil, nil, nil)
	wrapped := mw.Wrap(func(context.Context, QueryMeta) (int, error) { return 1, nil })
	meta := QueryMeta{Collection: "tasks"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = wrapped(ctx, meta)
	}
}
