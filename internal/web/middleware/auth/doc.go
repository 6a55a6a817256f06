// Package auth provides the middleware that attaches the authentication
// proxy to every request.
//
// The middleware establishes the session cookie, loads the session data
// from the configured storage backend, constructs the per-request proxy and
// stores it in fiber.Locals under the well-known key, then persists the
// session once the handler chain has completed.
//
// Usage:
//
//	app.Use(authmiddleware.New(authmiddleware.Config{
//		Scopes: registry,
//		Expiry: cfg.Webserver.Session.ExpiryTime,
//	}))
//
// Handlers reach the proxy through the request auth helper rather than
// touching the locals key directly.
package auth
