package login

import "errors"

// Auth method identifiers accepted in the login form.
const (
	AuthTypeLocal = "local"
	AuthTypeLDAP  = "ldap"
)

var (
	// ErrInvalidAuthMethod is returned for unknown auth_type values.
	ErrInvalidAuthMethod = errors.New("invalid authentication method")

	// ErrLocalAuthDisabled is returned when local auth was requested but is disabled.
	ErrLocalAuthDisabled = errors.New("local authentication is disabled")

	// ErrLDAPAuthDisabled is returned when LDAP auth was requested but is disabled.
	ErrLDAPAuthDisabled = errors.New("ldap authentication is disabled")

	// ErrNoAuthMethodEnabled is returned when no credential provider is enabled.
	ErrNoAuthMethodEnabled = errors.New("no authentication method enabled")
)
