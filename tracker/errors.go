package tracker

import "errors"

var (
	// ErrNilSource is returned when a Service is built without a data source.
	ErrNilSource = errors.New("tracker: data source is nil")

	// ErrNilReadThrough is returned when a Service is built without a cache.
	ErrNilReadThrough = errors.New("tracker: read-through cache is nil")

	// ErrEmptyID is returned by accessors given an empty identifier.
	// Nothing is queried or cached.
	ErrEmptyID = errors.New("tracker: empty identifier")
)
