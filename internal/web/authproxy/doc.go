// Package authproxy carries the per-request authentication proxy.
//
// The proxy owns the substantive authentication operations (resource
// loading, session-backed state, hook execution, failure responses), keyed
// by scope. One proxy is constructed per request by the middleware in
// internal/web/middleware/auth and stored in the request locals under
// LocalsKey; the request auth helper in internal/web/helper delegates
// every operation to it.
package authproxy
