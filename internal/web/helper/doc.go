// Package helper exposes the per-request authentication operations used by
// web handlers: scope-based sign-in, sign-out, session access and guard
// handlers. Every substantive operation is delegated to the authentication
// proxy injected into the request environment; the helper itself holds no
// authentication logic or state beyond a per-request memo of the current
// resource per scope.
//
// A ScopeHelper is instantiated per configured scope when the Helper is
// built, giving handlers the usual zero-argument accessors:
//
//	users := h.For("user")
//	app.Get("/dashboard", users.RequireAuthenticated(), func(c *fiber.Ctx) error {
//		u := users.Current(c)
//		...
//	})
package helper
