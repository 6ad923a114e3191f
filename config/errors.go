package config

import "errors"

var (
	// ErrInvalidDuration is returned for duration values that do not parse.
	ErrInvalidDuration = errors.New("config: invalid duration")

	// ErrInvalidValue is returned for out-of-range settings.
	ErrInvalidValue = errors.New("config: invalid value")
)
