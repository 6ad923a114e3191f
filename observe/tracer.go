package observe

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Query operations.
const (
	OpQuery  = "query"
	OpLookup = "lookup"
)

// QueryMeta describes one data-source round trip for telemetry purposes.
type QueryMeta struct {
	Source     string   // Source name, e.g. "http" or "memory" (optional)
	Collection string   // Collection queried (required)
	Operation  string   // OpQuery or OpLookup; empty means OpQuery
	DocumentID string   // Lookup target (optional)
	Predicates []string // Rendered equality filters, e.g. "projectId==P1"
}

// Op returns the operation, defaulting to OpQuery.
func (m QueryMeta) Op() string {
	if m.Operation == "" {
		return OpQuery
	}
	return m.Operation
}

// SpanName returns the deterministic span name.
// Format: datasource.<operation>.<collection>
func (m QueryMeta) SpanName() string {
	return "datasource." + m.Op() + "." + m.Collection
}

// Validate reports ErrMissingCollection when Collection is empty.
func (m QueryMeta) Validate() error {
	if m.Collection == "" {
		return ErrMissingCollection
	}
	return nil
}

func (m QueryMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("datasource.collection", m.Collection),
		attribute.String("datasource.operation", m.Op()),
	}
	if m.Source != "" {
		attrs = append(attrs, attribute.String("datasource.source", m.Source))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with query span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a data-source query.
	StartSpan(ctx context.Context, meta QueryMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error and the result size.
	EndSpan(span trace.Span, results int, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return newNoopTracer()
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta QueryMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("datasource.error", false))
	if meta.DocumentID != "" {
		attrs = append(attrs, attribute.String("datasource.document_id", meta.DocumentID))
	}
	if len(meta.Predicates) > 0 {
		attrs = append(attrs, attribute.String("datasource.where", strings.Join(meta.Predicates, ",")))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, results int, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("datasource.error", true))
		span.RecordError(err)
	} else {
		span.SetAttributes(attribute.Int("datasource.results", results))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta QueryMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ int, _ error) {
	span.End()
}
