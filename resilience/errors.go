package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded is returned when no token is available.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when every slot is taken.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when an attempt outlives its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// IsRejection reports whether err came from a guard refusing to run the
// operation rather than from the operation itself.
func IsRejection(err error) bool {
	return errors.Is(err, ErrCircuitOpen) ||
		errors.Is(err, ErrRateLimitExceeded) ||
		errors.Is(err, ErrBulkheadFull)
}
