// Package main provides the entry point for the ScopeGate authentication
// portal. It initializes and runs a web server using the Fiber framework
// that keeps independently authenticated scopes (users and admins) in a
// single session, with local database, LDAP and OpenID Connect credential
// providers. The application uses gorm for data persistence and a pluggable
// session storage backend.
package main
