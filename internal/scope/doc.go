// Package scope maintains the process-wide table mapping authentication
// scopes (named classes of authenticatable entities such as "user" or
// "admin") to their resource types.
//
// The registry is built once at startup, frozen before the web service
// starts, and read-only afterwards. Sign-in, sign-out and stored-location
// operations resolve a scope either by its explicit name or by looking up
// the runtime type of a resource instance; an unregistered type surfaces
// as a *LookupError, which indicates a setup mistake rather than a
// runtime condition.
package scope
