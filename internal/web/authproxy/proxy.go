package authproxy

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/session"
)

// LocalsKey is the well-known request-locals key under which the proxy is
// injected into the request environment.
const LocalsKey = "scopegate_auth_proxy"

// Options parameterize Authenticate, MustAuthenticate and SetUser calls.
type Options struct {
	// Scope selects the scope the operation applies to. Required for
	// authentication checks; optional for SetUser, where an empty scope is
	// resolved from the resource's runtime type.
	Scope scope.Name
}

// Proxy is the authentication proxy contract consumed by the request auth
// helper. All operations are keyed by scope.
type Proxy interface {
	// Authenticate performs a non-redirecting authentication check and
	// returns the scope's resource, or nil when unauthenticated.
	Authenticate(opts Options) (any, error)

	// MustAuthenticate behaves like Authenticate but triggers the
	// configured failure response (redirect, 401) when no resource is
	// authenticated, and reports ErrAuthenticationRequired.
	MustAuthenticate(opts Options) (any, error)

	// Authenticated reports whether the scope has an authenticated
	// resource in the session, without loading it or running hooks.
	Authenticated(s scope.Name) bool

	// SetUser marks the resource as authenticated for its scope.
	SetUser(resource any, opts Options) error

	// User returns the scope's authenticated resource, loading it from
	// the mapping's finder on first access within the request.
	User(s scope.Name) (any, error)

	// Session returns the mutable session substructure namespaced to the
	// scope.
	Session(s scope.Name) map[string]any

	// Logout clears authentication state for the given scopes, or the
	// whole session when none are given.
	Logout(scopes ...scope.Name) error

	// RawSession exposes the raw session data backing the proxy.
	RawSession() *session.Data
}

// FromCtx returns the proxy injected into the request environment, or nil
// when the middleware did not run.
func FromCtx(c *fiber.Ctx) Proxy {
	p, _ := c.Locals(LocalsKey).(Proxy)
	return p
}

// FailureHandler writes the failure response for MustAuthenticate. The
// default implementation stores the requested location and redirects to the
// scope's sign-in path.
type FailureHandler func(c *fiber.Ctx, s scope.Name, p Proxy) error

// Hooks are callback lists the proxy runs around authentication state
// changes.
type Hooks struct {
	// AfterSetUser runs after a resource was set for a scope.
	AfterSetUser []func(c *fiber.Ctx, resource any, opts Options)

	// BeforeLogout runs before a scope's authentication state is cleared,
	// with the resource force-loaded so the callback can observe it.
	BeforeLogout []func(c *fiber.Ctx, resource any, s scope.Name)
}
