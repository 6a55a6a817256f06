// Package login provides the sign-in handlers for the user scope.
package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/scopegate/scopegate/internal/auth"
	"github.com/scopegate/scopegate/internal/config"
	"github.com/scopegate/scopegate/internal/db/models"
	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/handler"
	"github.com/scopegate/scopegate/internal/web/helper"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// TemplateName is the name of the login template.
	TemplateName = "login"
)

// Request is the login form payload.
type Request struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	OTPCode  string `form:"otp_code" validate:"omitempty,numeric,len=6"`
	AuthType string `form:"auth_type" validate:"omitempty,oneof=local ldap"`
}

// Service is the login handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	h         *helper.Helper
	users     *helper.ScopeHelper
	validator *validator.Validate
	local     *auth.LocalProvider
	ldapAuth  *auth.LDAPProvider
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, h *helper.Helper) error {
	if app == nil || cfg == nil || db == nil || h == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.h = h
	s.users = h.For(handler.ScopeUser)
	s.validator = validator.New()
	s.local = auth.NewLocalProvider(db)

	if cfg.Auth.LDAP.Enabled {
		ldapAuth, err := auth.NewLDAPProvider(&cfg.Auth.LDAP, db)
		if err != nil {
			return err
		}

		s.ldapAuth = ldapAuth
	}

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	if s.users.SignedIn(c) {
		return c.Redirect(s.h.AfterSignInPath(c, scope.ByName(handler.ScopeUser)))
	}

	return c.Render(TemplateName, s.viewData(""))
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(Request)

	if err := c.BodyParser(req); err != nil {
		return err
	}

	if err := s.validator.Struct(req); err != nil {
		return c.Render(TemplateName, s.viewData("Username and password are required"))
	}

	authType, err := s.pickAuthType(req.AuthType)
	if err != nil {
		return c.Render(TemplateName, s.viewData("Authentication method not available"))
	}

	user, err := s.authenticate(authType, req)
	if err != nil {
		log.Info().Err(err).Str("username", req.Username).Str("method", authType).
			Msg("login rejected")

		return c.Render(TemplateName, s.viewData("Invalid credentials"))
	}

	// scope inferred from the resource's runtime type
	if err := s.h.SignIn(c, scope.ByResource(user)); err != nil {
		log.Error().Err(err).Msg("failed to sign in user")

		return c.Render(TemplateName, s.viewData("Internal server error"))
	}

	return c.Redirect(s.h.AfterSignInPath(c, scope.ByResource(user)))
}

func (s *Service) authenticate(authType string, req *Request) (*models.User, error) {
	if authType == AuthTypeLDAP {
		return s.ldapAuth.Authenticate(req.Username, req.Password)
	}

	return s.local.Authenticate(req.Username, req.Password, req.OTPCode)
}

// pickAuthType selects the credential provider for the request, falling
// back to the first enabled one when none was requested.
func (s *Service) pickAuthType(requested string) (string, error) {
	switch requested {
	case "":
		if s.cfg.Auth.LocalDB.Enabled {
			return AuthTypeLocal, nil
		}

		if s.cfg.Auth.LDAP.Enabled {
			return AuthTypeLDAP, nil
		}

		return "", ErrNoAuthMethodEnabled
	case AuthTypeLocal:
		if !s.cfg.Auth.LocalDB.Enabled {
			return "", ErrLocalAuthDisabled
		}

		return AuthTypeLocal, nil
	case AuthTypeLDAP:
		if !s.cfg.Auth.LDAP.Enabled || s.ldapAuth == nil {
			return "", ErrLDAPAuthDisabled
		}

		return AuthTypeLDAP, nil
	default:
		return "", ErrInvalidAuthMethod
	}
}

func (s *Service) viewData(errorMsg string) fiber.Map {
	data := fiber.Map{
		"title":            s.cfg.Title,
		"local_db_enabled": s.cfg.Auth.LocalDB.Enabled,
		"ldap_enabled":     s.cfg.Auth.LDAP.Enabled,
		"oidc_enabled":     s.cfg.Auth.OIDC.Enabled,
	}

	if errorMsg != "" {
		data["error"] = errorMsg
	}

	return data
}
