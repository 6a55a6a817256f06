package scope

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrRegistryFrozen is returned when registering a mapping after the
	// registry was frozen.
	ErrRegistryFrozen = errors.New("scope registry is frozen")

	// ErrDuplicateScope is returned when a scope name or resource type is
	// registered twice.
	ErrDuplicateScope = errors.New("scope already registered")

	// ErrIncompleteMapping is returned when a mapping misses its name,
	// resource prototype or serialization functions.
	ErrIncompleteMapping = errors.New("mapping is incomplete")
)

// LookupError is returned when no mapping is registered for a requested
// scope name or resource type. It indicates a configuration error: the
// mapping table must be set up before the scope is used.
type LookupError struct {
	// Name is the unmatched scope name, if the lookup was by name.
	Name Name
	// Type is the unmatched resource type, if the lookup was by resource.
	Type reflect.Type
}

func (e *LookupError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("no scope mapping registered for resource type %s", e.Type)
	}

	return fmt.Sprintf("no scope mapping registered for name %q", e.Name)
}
