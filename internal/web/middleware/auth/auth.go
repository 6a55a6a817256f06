package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/authproxy"
	"github.com/scopegate/scopegate/internal/web/session"
)

// CookieName is the session cookie carrying the session ID.
const CookieName = "session"

// Config configures the proxy injection middleware.
type Config struct {
	// Scopes is the frozen scope registry.
	Scopes *scope.Registry

	// Expiry is the session (and cookie) lifetime.
	Expiry time.Duration

	// Secure controls the cookie Secure flag; disabled in dev mode.
	Secure bool

	// Hooks are passed through to the per-request proxy.
	Hooks authproxy.Hooks

	// Failure overrides the proxy's failure response.
	Failure authproxy.FailureHandler
}

// New returns the middleware that constructs the per-request authentication
// proxy and injects it into the request environment. Session data is
// persisted after the handler chain completes.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(CookieName)

		if sessionID == "" {
			var err error

			sessionID, err = session.GenerateSessionID()
			if err != nil {
				return err
			}

			c.Cookie(&fiber.Cookie{
				Name:     CookieName,
				Value:    sessionID,
				MaxAge:   int(cfg.Expiry.Seconds()),
				Secure:   cfg.Secure,
				HTTPOnly: true,
				SameSite: "Lax",
			})
		}

		data := new(session.Data)
		// a failed read means a fresh or expired session; start empty
		_ = data.Read(sessionID)

		proxy := authproxy.New(c, cfg.Scopes, data, sessionID, authproxy.Config{
			Expiry:  cfg.Expiry,
			Failure: cfg.Failure,
			Hooks:   cfg.Hooks,
		})

		c.Locals(authproxy.LocalsKey, authproxy.Proxy(proxy))

		err := c.Next()

		if flushErr := proxy.Flush(); flushErr != nil {
			log.Error().Err(flushErr).Msg("failed to persist session")
		}

		return err
	}
}
