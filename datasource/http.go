package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/dashcache/resilience"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	// BaseURL is the store's API root, e.g. https://store.example.com/v1.
	BaseURL string

	// Token supplies the bearer token. Nil sends no Authorization header.
	Token TokenSource

	UserAgent string

	// Timeout bounds one attempt. Default: 10s
	Timeout time.Duration

	// MaxConcurrent caps requests in flight. Default: 8
	MaxConcurrent int

	// MaxAttempts counts the first attempt; only unavailability is retried.
	// Default: 3
	MaxAttempts int

	// RetryDelay is the first backoff delay. Default: 200ms
	RetryDelay time.Duration

	// FailureThreshold is the number of consecutive unavailable responses
	// that opens the circuit. Default: 5
	FailureThreshold int

	// ResetTimeout is how long the circuit stays open. Default: 30s
	ResetTimeout time.Duration
}

func (c *HTTPConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 8
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 200 * time.Millisecond
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = 30 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "dashcache"
	}
}

// HTTPSource reads documents over the store's REST API:
//
//	GET {base}/collections/{c}/documents?where=field==value
//	GET {base}/collections/{c}/documents/{id}
//	GET {base}/ping
type HTTPSource struct {
	cfg    HTTPConfig
	base   *url.URL
	client *http.Client
	exec   *resilience.Executor
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithExecutor replaces the executor built from HTTPConfig.
func WithExecutor(e *resilience.Executor) HTTPOption {
	return func(s *HTTPSource) { s.exec = e }
}

// NewHTTPSource validates cfg and builds the client.
func NewHTTPSource(cfg HTTPConfig, opts ...HTTPOption) (*HTTPSource, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || cfg.BaseURL == "" || !base.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrMissingBaseURL, cfg.BaseURL)
	}
	cfg.applyDefaults()

	s := &HTTPSource{
		cfg:    cfg,
		base:   base,
		client: &http.Client{},
	}
	s.exec = resilience.NewExecutor(
		resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.Timeout,
			OnAcquire:     recordQueueing,
		})),
		resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			MaxFailures:  cfg.FailureThreshold,
			ResetTimeout: cfg.ResetTimeout,
			IsFailure:    countsAgainstCircuit,
		})),
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  cfg.MaxAttempts,
			InitialDelay: cfg.RetryDelay,
			Jitter:       true,
			RetryIf:      retryable,
		})),
		resilience.WithTimeout(cfg.Timeout),
	)

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Executor returns the resilience executor guarding requests.
func (s *HTTPSource) Executor() *resilience.Executor {
	return s.exec
}

// Query implements Source.
func (s *HTTPSource) Query(ctx context.Context, collection string, where ...Predicate) ([]Document, error) {
	u := s.endpoint("collections", collection, "documents")
	if len(where) > 0 {
		q := url.Values{}
		for _, p := range where {
			q.Add("where", p.String())
		}
		u.RawQuery = q.Encode()
	}

	docs, err := resilience.Do(ctx, s.exec, func(ctx context.Context) ([]Document, error) {
		body, err := s.get(ctx, u.String())
		if err != nil {
			return nil, err
		}
		return decodeDocuments(body)
	})
	if err != nil {
		return nil, &QueryError{Collection: collection, Op: "query", Where: describe(where), Err: classify(err)}
	}
	return docs, nil
}

// Lookup implements Source.
func (s *HTTPSource) Lookup(ctx context.Context, collection, id string) (Document, error) {
	u := s.endpoint("collections", collection, "documents", id)

	doc, err := resilience.Do(ctx, s.exec, func(ctx context.Context) (Document, error) {
		body, err := s.get(ctx, u.String())
		if err != nil {
			return Document{}, err
		}
		if !gjson.ValidBytes(body) {
			return Document{}, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
		}
		return decodeDocument(gjson.ParseBytes(body))
	})
	if err != nil {
		return Document{}, &QueryError{Collection: collection, Op: "lookup", ID: id, Err: classify(err)}
	}
	return doc, nil
}

// Ping implements Pinger. It bypasses the executor so it reports the store's
// reachability even while the circuit is open.
func (s *HTTPSource) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	_, err := s.get(ctx, s.endpoint("ping").String())
	return err
}

func (s *HTTPSource) endpoint(segments ...string) *url.URL {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	return s.base.JoinPath(escaped...)
}

func (s *HTTPSource) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	if s.cfg.Token != nil {
		token, err := s.cfg.Token.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}
	if err := statusError(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

func statusError(code int, body []byte) error {
	var sentinel error
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		sentinel = ErrNotFound
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		sentinel = ErrPermissionDenied
	case code == http.StatusTooManyRequests, code >= 500:
		sentinel = ErrUnavailable
	default:
		sentinel = ErrInvalidRequest
	}

	if msg := gjson.GetBytes(body, "error").String(); msg != "" {
		return fmt.Errorf("%w: status %d: %s", sentinel, code, msg)
	}
	return fmt.Errorf("%w: status %d", sentinel, code)
}

func decodeDocuments(body []byte) ([]Document, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}
	list := gjson.GetBytes(body, "documents")
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: missing documents array", ErrMalformedResponse)
	}

	items := list.Array()
	docs := make([]Document, 0, len(items))
	for _, item := range items {
		doc, err := decodeDocument(item)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func decodeDocument(r gjson.Result) (Document, error) {
	id := r.Get("id").String()
	if id == "" {
		return Document{}, fmt.Errorf("%w: document without id", ErrMalformedResponse)
	}

	fields := map[string]any{}
	if f := r.Get("fields"); f.Exists() {
		if !f.IsObject() {
			return Document{}, fmt.Errorf("%w: fields of %s is not an object", ErrMalformedResponse, id)
		}
		fields, _ = f.Value().(map[string]any)
	}
	return Document{ID: id, Fields: fields}, nil
}

// classify folds guard failures into ErrUnavailable so callers see one
// category for "the store did not answer".
func classify(err error) error {
	if errors.Is(err, resilience.ErrTimeout) || resilience.IsRejection(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// recordQueueing adds a store.queued event to the query span when a request
// had to wait for a slot.
func recordQueueing(ctx context.Context, waited time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("store.queued", trace.WithAttributes(
		attribute.Int64("store.queue.wait_ms", waited.Milliseconds()),
		attribute.Bool("store.queue.rejected", errors.Is(err, resilience.ErrBulkheadFull)),
	))
}

func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, resilience.ErrTimeout)
}

func countsAgainstCircuit(err error) bool {
	return retryable(err)
}

var (
	_ Source = (*HTTPSource)(nil)
	_ Pinger = (*HTTPSource)(nil)
)
