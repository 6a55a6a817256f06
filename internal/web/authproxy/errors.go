package authproxy

import (
	"errors"
)

var (
	// ErrAuthenticationRequired is reported by MustAuthenticate after the
	// failure response was written.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrNoScope is returned when an authentication check is requested
	// without a scope.
	ErrNoScope = errors.New("no scope given")

	// ErrNilResource is returned when SetUser is called without a resource.
	ErrNilResource = errors.New("resource is nil")
)
