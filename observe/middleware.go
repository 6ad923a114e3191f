package observe

import (
	"context"
	"time"
)

// QueryFunc performs one data-source round trip and reports how many
// documents it produced.
type QueryFunc func(ctx context.Context, meta QueryMeta) (int, error)

// Middleware wraps data-source queries with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe QueryFunc.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Wrap wraps fn with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn QueryFunc) QueryFunc {
	return func(ctx context.Context, meta QueryMeta) (int, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		n, err := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, n, err)
		m.metrics.RecordQuery(ctx, meta, duration, err)

		log := m.logger.With(
			F("collection", meta.Collection),
			F("operation", meta.Op()),
		)
		fields := []Field{F("duration_ms", float64(duration.Microseconds())/1000)}
		if meta.DocumentID != "" {
			fields = append(fields, F("document_id", meta.DocumentID))
		}
		if err != nil {
			fields = append(fields, F("error", err))
			log.Warn(ctx, "data-source query failed", fields...)
		} else {
			fields = append(fields, F("results", n))
			log.Debug(ctx, "data-source query completed", fields...)
		}

		return n, err
	}
}

// MiddlewareFromObserver builds a Middleware from an Observer's tracer, meter,
// and logger.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
