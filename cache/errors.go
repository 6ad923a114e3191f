package cache

import "errors"

// Configuration errors returned by Config.Validate and New.
var (
	ErrInvalidTTL     = errors.New("cache: ttl must be positive")
	ErrInvalidMaxSize = errors.New("cache: max size must not be negative")
	ErrInvalidMaxTTL  = errors.New("cache: max ttl must be zero or at least ttl")
)

// ErrNilEngine is returned when a read-through is built without an engine.
var ErrNilEngine = errors.New("cache: engine is nil")
