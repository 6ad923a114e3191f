package datasource

import (
	"errors"
	"fmt"
)

// Error categories.
var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("datasource: not found")

	// ErrPermissionDenied indicates the credentials were rejected.
	ErrPermissionDenied = errors.New("datasource: permission denied")

	// ErrUnavailable indicates the store could not be reached or failed.
	ErrUnavailable = errors.New("datasource: unavailable")

	// ErrInvalidRequest indicates the store rejected the request as malformed.
	ErrInvalidRequest = errors.New("datasource: invalid request")

	// ErrMalformedResponse indicates the response body could not be decoded.
	ErrMalformedResponse = errors.New("datasource: malformed response")
)

// Configuration errors.
var (
	// ErrMissingBaseURL indicates HTTPConfig.BaseURL is empty or not absolute.
	ErrMissingBaseURL = errors.New("datasource: base URL is required")

	// ErrMissingSigningKey indicates a service token has no signing key.
	ErrMissingSigningKey = errors.New("datasource: signing key is required")
)

// QueryError describes a failed Query or Lookup.
type QueryError struct {
	Collection string
	Op         string // "query" or "lookup"
	ID         string // Lookup target, if any
	Where      string // Rendered predicates, if any
	Err        error
}

func (e *QueryError) Error() string {
	target := e.Collection
	switch {
	case e.ID != "":
		target += "/" + e.ID
	case e.Where != "":
		target += "[" + e.Where + "]"
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
