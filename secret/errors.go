package secret

import "errors"

var (
	// ErrMissingEnv is returned when ${VAR} names an unset variable.
	ErrMissingEnv = errors.New("secret: missing environment variables")

	// ErrUnknownProvider is returned for references to unregistered providers.
	ErrUnknownProvider = errors.New("secret: provider not registered")

	// ErrDuplicateProvider is returned when a provider name is registered twice.
	ErrDuplicateProvider = errors.New("secret: provider already registered")

	// ErrInvalidProvider is returned for a blank name or nil factory.
	ErrInvalidProvider = errors.New("secret: invalid provider registration")

	// ErrEmptySecret is returned by strict resolvers when a provider yields "".
	ErrEmptySecret = errors.New("secret: empty value")

	// ErrNotFound is returned by providers that have no value for a reference.
	ErrNotFound = errors.New("secret: not found")
)
