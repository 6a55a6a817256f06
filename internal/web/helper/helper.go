package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/authproxy"
)

// ErrNoProxy is returned when the authentication proxy middleware did not
// run for the request.
var ErrNoProxy = errors.New("no authentication proxy in request environment")

// ErrNoResource is returned by SignIn when the Ref carries no resource.
var ErrNoResource = errors.New("sign in requires a resource")

// Helper provides the request-scoped authentication operations. It is built
// once from the frozen scope registry; a ScopeHelper is instantiated for
// each configured scope.
type Helper struct {
	scopes  *scope.Registry
	byScope map[scope.Name]*ScopeHelper
}

// New builds the helper and its per-scope accessors from the registry.
func New(scopes *scope.Registry) *Helper {
	h := &Helper{
		scopes:  scopes,
		byScope: make(map[scope.Name]*ScopeHelper),
	}

	for _, name := range scopes.Names() {
		h.byScope[name] = &ScopeHelper{
			h:         h,
			name:      name,
			localsKey: "scopegate_current_" + string(name),
		}
	}

	return h
}

// For returns the accessors generated for the given scope, or nil when the
// scope is not configured.
func (h *Helper) For(s scope.Name) *ScopeHelper {
	return h.byScope[s]
}

// Scopes returns the configured scope names.
func (h *Helper) Scopes() []scope.Name {
	return h.scopes.Names()
}

// Proxy returns the authentication proxy injected into the request
// environment.
func (h *Helper) Proxy(c *fiber.Ctx) (authproxy.Proxy, error) {
	p := authproxy.FromCtx(c)
	if p == nil {
		return nil, ErrNoProxy
	}

	return p, nil
}

// Authenticate runs the proxy's non-redirecting authentication check for
// the scope and returns the resource, or nil when unauthenticated.
func (h *Helper) Authenticate(c *fiber.Ctx, s scope.Name) (any, error) {
	p, err := h.Proxy(c)
	if err != nil {
		return nil, err
	}

	return p.Authenticate(authproxy.Options{Scope: s})
}

// MustAuthenticate runs the authentication check and lets the proxy perform
// its failure response when it fails. The returned
// authproxy.ErrAuthenticationRequired signals that the response was already
// written.
func (h *Helper) MustAuthenticate(c *fiber.Ctx, s scope.Name) (any, error) {
	p, err := h.Proxy(c)
	if err != nil {
		return nil, err
	}

	return p.MustAuthenticate(authproxy.Options{Scope: s})
}

// SignedIn reports whether the scope has an authenticated resource in the
// current session. No hooks run.
func (h *Helper) SignedIn(c *fiber.Ctx, s scope.Name) bool {
	p, err := h.Proxy(c)
	if err != nil {
		return false
	}

	return p.Authenticated(s)
}

// SignIn sets the Ref's resource as authenticated for its scope. The scope
// is taken from the Ref's explicit name or resolved from the resource's
// runtime type; an unregistered type fails with *scope.LookupError.
func (h *Helper) SignIn(c *fiber.Ctx, ref scope.Ref) error {
	resource := ref.Resource()
	if resource == nil {
		return ErrNoResource
	}

	m, err := h.scopes.Resolve(ref)
	if err != nil {
		return err
	}

	p, err := h.Proxy(c)
	if err != nil {
		return err
	}

	if err := p.SetUser(resource, authproxy.Options{Scope: m.Name}); err != nil {
		return err
	}

	h.memoize(c, m.Name, resource)

	return nil
}

// SignOut clears authentication for the Ref's scope.
func (h *Helper) SignOut(c *fiber.Ctx, ref scope.Ref) error {
	m, err := h.scopes.Resolve(ref)
	if err != nil {
		return err
	}

	p, err := h.Proxy(c)
	if err != nil {
		return err
	}

	// Force-load the current resource first: the proxy defers loading, and
	// the logout hooks must observe the resource that is being signed out.
	if _, err := p.User(m.Name); err != nil {
		return err
	}

	// Touch the raw session before clearing; some session backends only
	// apply a clear after the store has been read.
	_ = p.RawSession()

	if err := p.Logout(m.Name); err != nil {
		return err
	}

	h.memoize(c, m.Name, nil)

	return nil
}

// SignOutAllScopes clears authentication for every configured scope and
// resets the session.
func (h *Helper) SignOutAllScopes(c *fiber.Ctx) error {
	p, err := h.Proxy(c)
	if err != nil {
		return err
	}

	if err := p.Logout(); err != nil {
		return err
	}

	for _, s := range h.scopes.Names() {
		h.memoize(c, s, nil)
	}

	return nil
}

// StoredLocation reads and removes the location previously stored for the
// Ref's scope. The read is destructive: a second call returns "".
func (h *Helper) StoredLocation(c *fiber.Ctx, ref scope.Ref) (string, error) {
	m, err := h.scopes.Resolve(ref)
	if err != nil {
		return "", err
	}

	p, err := h.Proxy(c)
	if err != nil {
		return "", err
	}

	sess := p.RawSession()

	location, ok := sess.Value(m.ReturnToKey())
	if !ok {
		return "", nil
	}

	sess.DeleteValue(m.ReturnToKey())

	return location, nil
}

// StoreLocation remembers a location to return to after the next sign-in
// for the Ref's scope.
func (h *Helper) StoreLocation(c *fiber.Ctx, ref scope.Ref, location string) error {
	m, err := h.scopes.Resolve(ref)
	if err != nil {
		return err
	}

	p, err := h.Proxy(c)
	if err != nil {
		return err
	}

	p.RawSession().SetValue(m.ReturnToKey(), location)

	return nil
}

// AfterSignInPath consumes the stored location for the Ref's scope, falling
// back to the mapping's default.
func (h *Helper) AfterSignInPath(c *fiber.Ctx, ref scope.Ref) string {
	m, err := h.scopes.Resolve(ref)
	if err != nil {
		return "/"
	}

	if location, err := h.StoredLocation(c, ref); err == nil && location != "" {
		return location
	}

	if m.Routes.AfterSignInPath != "" {
		return m.Routes.AfterSignInPath
	}

	return "/"
}

// memo wraps a memoized current resource so that "no resource" is
// remembered too and the proxy lookup runs at most once per request.
type memo struct {
	resource any
}

func (h *Helper) memoize(c *fiber.Ctx, s scope.Name, resource any) {
	if sh := h.byScope[s]; sh != nil {
		c.Locals(sh.localsKey, &memo{resource: resource})
	}
}
