// Package admin provides the administration area: its own login, logout and
// dashboard, authenticated under the admin scope. Admin sessions are
// namespaced separately from user sessions, so signing an admin in or out
// never touches a signed-in user.
package admin

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
	// Path is the admin dashboard path.
	Path = handler.RootPath + "admin"

	// LoginPath is the admin login path.
	LoginPath = Path + "/login"

	// LogoutPath is the admin logout path.
	LogoutPath = Path + "/logout"

	// TemplateLogin is the admin login template.
	TemplateLogin = "admin/login"

	// TemplateDashboard is the admin dashboard template.
	TemplateDashboard = "admin/dashboard"
)

// Request is the admin login form payload.
type Request struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Service provides the admin area handlers.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	h         *helper.Helper
	admins    *helper.ScopeHelper
	validator *validator.Validate
	local     *auth.LocalProvider
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers the admin routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, h *helper.Helper) error {
	if app == nil || cfg == nil || db == nil || h == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.h = h
	s.admins = h.For(handler.ScopeAdmin)
	s.validator = validator.New()
	s.local = auth.NewLocalProvider(db)

	app.Get(LoginPath, s.GetLogin)
	app.Post(LoginPath, s.PostLogin)
	app.Get(LogoutPath, s.Logout)
	app.Post(LogoutPath, s.Logout)
	app.Get(Path, s.admins.RequireAuthenticated(), s.Dashboard)

	return nil
}

// GetLogin renders the admin login page.
func (s *Service) GetLogin(c *fiber.Ctx) error {
	if s.admins.SignedIn(c) {
		return c.Redirect(Path)
	}

	return c.Render(TemplateLogin, fiber.Map{"title": s.cfg.Title})
}

// PostLogin handles the admin login form submission.
func (s *Service) PostLogin(c *fiber.Ctx) error {
	req := new(Request)

	if err := c.BodyParser(req); err != nil {
		return err
	}

	if err := s.validator.Struct(req); err != nil {
		return c.Render(TemplateLogin, fiber.Map{
			"title": s.cfg.Title,
			"error": "Username and password are required",
		})
	}

	admin, err := s.local.AuthenticateAdmin(req.Username, req.Password)
	if err != nil {
		log.Info().Err(err).Str("username", req.Username).Msg("admin login rejected")

		return c.Render(TemplateLogin, fiber.Map{
			"title": s.cfg.Title,
			"error": "Invalid credentials",
		})
	}

	// explicit scope with an explicit resource
	if err := s.h.SignIn(c, scope.ByName(handler.ScopeAdmin).WithResource(admin)); err != nil {
		log.Error().Err(err).Msg("failed to sign in admin")

		return c.Render(TemplateLogin, fiber.Map{
			"title": s.cfg.Title,
			"error": "Internal server error",
		})
	}

	return c.Redirect(s.h.AfterSignInPath(c, scope.ByName(handler.ScopeAdmin)))
}

// Logout signs the admin scope out and redirects to the admin login page.
func (s *Service) Logout(c *fiber.Ctx) error {
	if err := s.h.SignOut(c, scope.ByName(handler.ScopeAdmin)); err != nil {
		log.Error().Err(err).Msg("failed to sign out admin")
	}

	return c.Redirect(LoginPath)
}

// Dashboard renders the admin dashboard with account totals.
func (s *Service) Dashboard(c *fiber.Ctx) error {
	admin, ok := s.admins.Current(c).(*models.Admin)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var userCount int64
	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		log.Error().Err(err).Msg("failed to count users")
	}

	return c.Render(TemplateDashboard, fiber.Map{
		"title":     s.cfg.Title,
		"username":  admin.Username,
		"userCount": userCount,
	})
}
