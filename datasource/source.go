package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Document is one record of a collection.
type Document struct {
	ID     string
	Fields map[string]any
}

// String returns a field rendered as text, or "" when absent.
func (d Document) String(field string) string {
	v, ok := d.Fields[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Float returns a numeric field, or 0 when absent or not a number.
func (d Document) Float(field string) float64 {
	switch v := d.Fields[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// Predicate is an equality filter: Field == Value.
type Predicate struct {
	Field string
	Value string
}

// Eq builds a Predicate.
func Eq(field, value string) Predicate {
	return Predicate{Field: field, Value: value}
}

// String renders the predicate as field==value.
func (p Predicate) String() string {
	return p.Field + "==" + p.Value
}

// Matches reports whether doc satisfies the predicate.
func (p Predicate) Matches(doc Document) bool {
	v, ok := doc.Fields[p.Field]
	return ok && v != nil && doc.String(p.Field) == p.Value
}

func renderPredicates(where []Predicate) []string {
	if len(where) == 0 {
		return nil
	}
	out := make([]string, len(where))
	for i, p := range where {
		out[i] = p.String()
	}
	return out
}

func describe(where []Predicate) string {
	return strings.Join(renderPredicates(where), ",")
}

// Source reads documents from a collection.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: implementations must honor cancellation.
//   - Errors: failures are *QueryError values wrapping one of the package
//     sentinels; a Query that matches nothing returns an empty slice and nil.
//   - Ordering: Query preserves the store's order.
type Source interface {
	// Query returns every document in collection matching all predicates.
	Query(ctx context.Context, collection string, where ...Predicate) ([]Document, error)

	// Lookup returns the document with the given id, or ErrNotFound.
	Lookup(ctx context.Context, collection, id string) (Document, error)
}

// Pinger is implemented by sources that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
