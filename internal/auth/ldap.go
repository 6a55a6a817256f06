package auth

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"gorm.io/gorm"

	"github.com/scopegate/scopegate/internal/config"
	"github.com/scopegate/scopegate/internal/db/models"
)

// ErrLDAPDisabled is returned when LDAP authentication is disabled via configuration.
var ErrLDAPDisabled = errors.New("ldap authentication is disabled")

// ErrLDAPUserNotFound is returned when the search yields no unique user entry.
var ErrLDAPUserNotFound = errors.New("ldap user not found")

// LDAPProvider handles LDAP authentication.
type LDAPProvider struct {
	cfg *config.LDAPAuth
	db  *gorm.DB
}

// NewLDAPProvider creates a new LDAP provider.
func NewLDAPProvider(cfg *config.LDAPAuth, db *gorm.DB) (*LDAPProvider, error) {
	if !cfg.Enabled {
		return nil, ErrLDAPDisabled
	}

	if cfg.UsernameAttr == "" {
		cfg.UsernameAttr = "uid"
	}

	if cfg.EmailAttr == "" {
		cfg.EmailAttr = "mail"
	}

	if cfg.UserFilter == "" {
		cfg.UserFilter = "(uid={username})"
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 10
	}

	return &LDAPProvider{cfg: cfg, db: db}, nil
}

// Authenticate verifies the username and password against the directory and
// returns the matching local user record, creating it on first sign-in.
func (p *LDAPProvider) Authenticate(username, password string) (*models.User, error) {
	conn, err := p.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ldap: %w", err)
	}
	defer conn.Close()

	// Bind with the service account for the user search
	if p.cfg.BindDN != "" {
		if err := conn.Bind(p.cfg.BindDN, p.cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("service bind failed: %w", err)
		}
	}

	filter := strings.ReplaceAll(p.cfg.UserFilter, "{username}", ldap.EscapeFilter(username))

	result, err := conn.Search(ldap.NewSearchRequest(
		p.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, p.cfg.Timeout, false,
		filter,
		[]string{"dn", p.cfg.UsernameAttr, p.cfg.EmailAttr},
		nil,
	))
	if err != nil {
		return nil, fmt.Errorf("ldap search failed: %w", err)
	}

	if len(result.Entries) != 1 {
		return nil, ErrLDAPUserNotFound
	}

	entry := result.Entries[0]

	// Re-bind as the user to verify the password
	if err := conn.Bind(entry.DN, password); err != nil {
		return nil, ErrInvalidPassword
	}

	return p.upsertUser(entry.DN,
		entry.GetAttributeValue(p.cfg.UsernameAttr),
		entry.GetAttributeValue(p.cfg.EmailAttr),
	)
}

func (p *LDAPProvider) connect() (*ldap.Conn, error) {
	addr := net.JoinHostPort(p.cfg.Host, strconv.Itoa(p.cfg.Port))
	timeout := time.Duration(p.cfg.Timeout) * time.Second

	if p.cfg.UseSSL {
		return ldap.DialURL(
			"ldaps://"+addr,
			ldap.DialWithTLSConfig(&tls.Config{
				ServerName:         p.cfg.Host,
				InsecureSkipVerify: p.cfg.SkipVerify, //nolint:gosec
			}),
			ldap.DialWithDialer(&net.Dialer{Timeout: timeout}),
		)
	}

	return ldap.DialURL(
		"ldap://"+addr,
		ldap.DialWithDialer(&net.Dialer{Timeout: timeout}),
	)
}

// upsertUser keeps a local record per directory user so sessions can
// serialize a stable ID.
func (p *LDAPProvider) upsertUser(dn, username, email string) (*models.User, error) {
	var user models.User

	err := p.db.Where("external_id = ? AND auth_source = ?", dn, models.AuthSourceLDAP).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Active:     true,
			Username:   username,
			Email:      email,
			AuthSource: models.AuthSourceLDAP,
			ExternalID: dn,
		}

		if err := p.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create ldap user: %w", err)
		}

		return &user, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query ldap user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	// refresh attributes from the directory
	user.Username = username
	user.Email = email

	if err := p.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update ldap user: %w", err)
	}

	return &user, nil
}
