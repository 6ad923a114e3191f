package health

import "errors"

var (
	// ErrCheckFailed marks a result produced by a failing component.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is set on results of checks that missed the deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned for unknown checker names.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
