package datasource

import (
	"context"

	"github.com/jonwraymond/dashcache/observe"
)

// Instrument wraps src so every call is traced, measured, and logged by mw.
// name identifies the source in telemetry, e.g. "http".
func Instrument(src Source, name string, mw *observe.Middleware) Source {
	if mw == nil {
		return src
	}
	return &instrumented{src: src, name: name, mw: mw}
}

type instrumented struct {
	src  Source
	name string
	mw   *observe.Middleware
}

func (i *instrumented) Query(ctx context.Context, collection string, where ...Predicate) ([]Document, error) {
	meta := observe.QueryMeta{
		Source:     i.name,
		Collection: collection,
		Operation:  observe.OpQuery,
		Predicates: renderPredicates(where),
	}

	var docs []Document
	_, err := i.mw.Wrap(func(ctx context.Context, _ observe.QueryMeta) (int, error) {
		var err error
		docs, err = i.src.Query(ctx, collection, where...)
		return len(docs), err
	})(ctx, meta)
	return docs, err
}

func (i *instrumented) Lookup(ctx context.Context, collection, id string) (Document, error) {
	meta := observe.QueryMeta{
		Source:     i.name,
		Collection: collection,
		Operation:  observe.OpLookup,
		DocumentID: id,
	}

	var doc Document
	_, err := i.mw.Wrap(func(ctx context.Context, _ observe.QueryMeta) (int, error) {
		var err error
		doc, err = i.src.Lookup(ctx, collection, id)
		if err != nil {
			return 0, err
		}
		return 1, nil
	})(ctx, meta)
	return doc, err
}

// Ping forwards to the wrapped source when it implements Pinger.
func (i *instrumented) Ping(ctx context.Context) error {
	if p, ok := i.src.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Unwrap returns the wrapped source.
func (i *instrumented) Unwrap() Source {
	return i.src
}
