package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/authproxy"
)

// ScopeHelper carries the accessors generated for one configured scope.
type ScopeHelper struct {
	h         *Helper
	name      scope.Name
	localsKey string
}

// Name returns the scope this helper was generated for.
func (sh *ScopeHelper) Name() scope.Name {
	return sh.name
}

// RequireAuthenticated returns a guard handler that runs before the main
// handler and short-circuits it with the proxy's failure response when the
// scope is not authenticated.
func (sh *ScopeHelper) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, err := sh.h.MustAuthenticate(c, sh.name)
		if err != nil {
			if errors.Is(err, authproxy.ErrAuthenticationRequired) {
				// failure response was already written by the proxy
				return nil
			}

			return err
		}

		return c.Next()
	}
}

// SignedIn reports whether the scope has an authenticated resource in the
// current session.
func (sh *ScopeHelper) SignedIn(c *fiber.Ctx) bool {
	return sh.h.SignedIn(c, sh.name)
}

// Current returns the scope's authenticated resource, or nil. The result is
// memoized in the request locals, so the proxy lookup runs at most once per
// request; absence is memoized too.
func (sh *ScopeHelper) Current(c *fiber.Ctx) any {
	if m, ok := c.Locals(sh.localsKey).(*memo); ok {
		return m.resource
	}

	resource, err := sh.h.Authenticate(c, sh.name)
	if err != nil {
		log.Error().Err(err).Str("scope", string(sh.name)).Msg("failed to load current resource")
		return nil
	}

	sh.h.memoize(c, sh.name, resource)

	return resource
}

// Session returns the mutable session substructure namespaced to the scope.
// A nil map means the request has no authentication proxy.
func (sh *ScopeHelper) Session(c *fiber.Ctx) map[string]any {
	p, err := sh.h.Proxy(c)
	if err != nil {
		return nil
	}

	return p.Session(sh.name)
}
