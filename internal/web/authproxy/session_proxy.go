package authproxy

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/session"
)

// Config configures a SessionProxy.
type Config struct {
	// Expiry is the session lifetime used when persisting.
	Expiry time.Duration

	// Failure writes the response for failed MustAuthenticate calls.
	// Defaults to DefaultFailureHandler over the registry.
	Failure FailureHandler

	// Hooks run around authentication state changes.
	Hooks Hooks
}

// SessionProxy is the session-backed Proxy implementation. One instance is
// created per request; it lazily loads resources through the scope mapping's
// finder and caches them for the remainder of the request.
type SessionProxy struct {
	c         *fiber.Ctx
	scopes    *scope.Registry
	data      *session.Data
	sessionID string
	cfg       Config

	// loaded caches resources per scope within the request. Absence is
	// cached too (a nil entry), so the finder runs at most once per scope
	// per request.
	loaded map[scope.Name]any
}

var _ Proxy = (*SessionProxy)(nil)

// New creates the per-request proxy over the given session data.
func New(c *fiber.Ctx, scopes *scope.Registry, data *session.Data, sessionID string, cfg Config) *SessionProxy {
	if cfg.Failure == nil {
		cfg.Failure = DefaultFailureHandler(scopes)
	}

	return &SessionProxy{
		c:         c,
		scopes:    scopes,
		data:      data,
		sessionID: sessionID,
		cfg:       cfg,
		loaded:    make(map[scope.Name]any),
	}
}

// Authenticate performs the non-redirecting authentication check.
func (p *SessionProxy) Authenticate(opts Options) (any, error) {
	if opts.Scope == "" {
		return nil, ErrNoScope
	}

	return p.User(opts.Scope)
}

// MustAuthenticate triggers the configured failure response when the scope
// has no authenticated resource.
func (p *SessionProxy) MustAuthenticate(opts Options) (any, error) {
	resource, err := p.Authenticate(opts)
	if err != nil {
		return nil, err
	}

	if resource == nil {
		if err := p.cfg.Failure(p.c, opts.Scope, p); err != nil {
			return nil, err
		}

		return nil, ErrAuthenticationRequired
	}

	return resource, nil
}

// Authenticated reports whether the scope has a serialized resource key in
// the session. It neither loads the resource nor runs hooks.
func (p *SessionProxy) Authenticated(s scope.Name) bool {
	sd, ok := p.data.Scopes[string(s)]
	return ok && sd.Key != ""
}

// SetUser marks the resource as authenticated for its scope.
func (p *SessionProxy) SetUser(resource any, opts Options) error {
	if resource == nil {
		return ErrNilResource
	}

	m, err := p.scopes.Resolve(scope.ByName(opts.Scope).WithResource(resource))
	if err != nil {
		return err
	}

	key, err := m.SerializeKey(resource)
	if err != nil {
		return err
	}

	p.data.Scope(string(m.Name)).Key = key
	p.loaded[m.Name] = resource

	for _, hook := range p.cfg.Hooks.AfterSetUser {
		hook(p.c, resource, Options{Scope: m.Name})
	}

	return nil
}

// User returns the scope's resource, loading it through the mapping's
// finder on first access within the request.
func (p *SessionProxy) User(s scope.Name) (any, error) {
	if resource, ok := p.loaded[s]; ok {
		return resource, nil
	}

	m, err := p.scopes.ByName(s)
	if err != nil {
		return nil, err
	}

	sd, ok := p.data.Scopes[string(s)]
	if !ok || sd.Key == "" {
		p.loaded[s] = nil
		return nil, nil
	}

	resource, err := m.Find(sd.Key)
	if err != nil || resource == nil {
		// The serialized key no longer resolves to a resource; drop it so
		// the session does not keep a dangling authentication.
		sd.Key = ""
		p.loaded[s] = nil

		if err != nil {
			log.Warn().Err(err).Str("scope", string(s)).Msg("failed to load session resource")
		}

		return nil, err
	}

	p.loaded[s] = resource

	return resource, nil
}

// Session returns the scope's namespaced session substructure.
func (p *SessionProxy) Session(s scope.Name) map[string]any {
	sd := p.data.Scope(string(s))
	if sd.Data == nil {
		sd.Data = make(map[string]any)
	}

	return sd.Data
}

// Logout clears authentication state. With no scopes given the whole
// session is reset; otherwise only the named scopes are cleared.
func (p *SessionProxy) Logout(scopes ...scope.Name) error {
	all := len(scopes) == 0
	if all {
		scopes = p.scopes.Names()
	}

	for _, s := range scopes {
		resource, err := p.User(s)
		if err != nil {
			log.Warn().Err(err).Str("scope", string(s)).Msg("loading resource before logout")
		}

		for _, hook := range p.cfg.Hooks.BeforeLogout {
			hook(p.c, resource, s)
		}

		delete(p.data.Scopes, string(s))
		delete(p.loaded, s)
	}

	if all {
		*p.data = session.Data{}
	}

	return nil
}

// RawSession exposes the raw session data backing the proxy.
func (p *SessionProxy) RawSession() *session.Data {
	return p.data
}

// Flush persists the session data. The middleware calls it once after the
// handler chain completes.
func (p *SessionProxy) Flush() error {
	return p.data.Write(p.sessionID, p.cfg.Expiry)
}

// DefaultFailureHandler remembers the requested location for navigational
// requests and redirects to the scope's sign-in path; API clients get a
// plain 401 instead.
func DefaultFailureHandler(scopes *scope.Registry) FailureHandler {
	return func(c *fiber.Ctx, s scope.Name, p Proxy) error {
		signInPath := "/"

		m, err := scopes.ByName(s)
		if err == nil && m.Routes.SignInPath != "" {
			signInPath = m.Routes.SignInPath
		}

		if c.Accepts("html", "json") == "json" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		if m != nil && c.Method() == fiber.MethodGet {
			p.RawSession().SetValue(m.ReturnToKey(), c.OriginalURL())
		}

		return c.Redirect(signInPath)
	}
}
