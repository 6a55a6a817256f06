package config

import (
	"time"

	"github.com/scopegate/scopegate/internal/logger"
)

// Supported database drivers.
const (
	DBDriverMySQL    = "mysql"
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Auth      Auth
	Webserver Webserver
}

// DB implements database connection settings.
type DB struct {
	Driver   string // mysql, postgres or sqlite
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Extras   string // extra DSN parameters, driver specific
	Path     string // database file path (sqlite only)
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Auth groups the credential provider settings.
type Auth struct {
	LocalDB LocalDBAuth
	LDAP    LDAPAuth
	OIDC    OIDCAuth
}

// LocalDBAuth enables username/password authentication against the local database.
type LocalDBAuth struct {
	Enabled bool
}

// LDAPAuth holds LDAP/Active Directory settings for the user scope.
type LDAPAuth struct {
	Enabled bool
	// Host is the LDAP server hostname or IP address.
	Host string
	// Port is the LDAP server port (typically 389 for LDAP, 636 for LDAPS).
	Port int
	// UseSSL enables LDAPS on port 636.
	UseSSL bool
	// SkipVerify skips TLS certificate verification (insecure, for testing only).
	SkipVerify bool
	// BindDN is the distinguished name to bind with for performing searches.
	BindDN string
	// BindPassword is the password for the bind DN.
	BindPassword string
	// BaseDN is the base distinguished name for user searches.
	BaseDN string
	// UserFilter is the LDAP filter for finding users (e.g., "(uid={username})").
	UserFilter string
	// UsernameAttr is the LDAP attribute containing the username (e.g., "uid").
	UsernameAttr string
	// EmailAttr is the LDAP attribute containing the email address (e.g., "mail").
	EmailAttr string
	// Timeout is the connection timeout in seconds.
	Timeout int
}

// OIDCAuth holds OpenID Connect settings for the user scope.
type OIDCAuth struct {
	Enabled bool
	// ProviderURL is the OIDC provider's discovery URL (e.g., "https://accounts.google.com").
	ProviderURL string
	// ClientID is the OAuth2 client identifier.
	ClientID string
	// ClientSecret is the OAuth2 client secret.
	ClientSecret string
	// RedirectURL is the OAuth2 callback URL where the provider redirects after authentication.
	RedirectURL string
	// Scopes are the OAuth2 scopes to request (default: ["openid", "profile", "email"]).
	Scopes []string
}
