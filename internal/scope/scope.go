package scope

import (
	"reflect"
)

// Name identifies a scope, e.g. "user" or "admin".
type Name string

// Routes holds the default URL-generation options of a mapping.
type Routes struct {
	// SignInPath is where unauthenticated requests for this scope are sent.
	SignInPath string
	// AfterSignInPath is the fallback target after a successful sign-in
	// when no location was stored for the scope.
	AfterSignInPath string
	// AfterSignOutPath is the redirect target after sign-out.
	AfterSignOutPath string
}

// Mapping associates a scope name with its resource type and the functions
// used to move a resource in and out of the session.
type Mapping struct {
	// Name is the scope identifier. Required.
	Name Name

	// Resource is a prototype instance of the scope's resource type,
	// e.g. &models.User{}. Only its type is retained. Required.
	Resource any

	// Routes are the default URL options for this scope.
	Routes Routes

	// SerializeKey turns a resource into the key stored in the session.
	// Required.
	SerializeKey func(resource any) (string, error)

	// Find loads a resource from a previously serialized session key.
	// Returning a nil resource (or an error) is treated as "no longer
	// authenticatable" and clears the session entry. Required.
	Find func(key string) (any, error)

	resourceType reflect.Type
}

// ResourceType returns the registered resource type with pointers stripped.
func (m *Mapping) ResourceType() reflect.Type {
	return m.resourceType
}

// ReturnToKey is the session key holding the stored "return to" location
// for this scope.
func (m *Mapping) ReturnToKey() string {
	return string(m.Name) + ".return_to"
}

// baseType normalizes a resource value to its non-pointer type, so that
// *models.User and models.User resolve to the same mapping.
func baseType(resource any) reflect.Type {
	t := reflect.TypeOf(resource)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}
