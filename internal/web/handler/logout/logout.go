// Package logout provides the sign-out handler for the user scope.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/scopegate/scopegate/internal/config"
	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/handler"
	"github.com/scopegate/scopegate/internal/web/handler/login"
	"github.com/scopegate/scopegate/internal/web/helper"
)

// Path is the path to the logout endpoint.
const Path = "/logout"

// Service is the logout handler service.
type Service struct {
	cfg *config.Config
	h   *helper.Helper
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, _ *gorm.DB, h *helper.Helper) error {
	if app == nil || cfg == nil || h == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.h = h

	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)

	return nil
}

// Logout signs the user scope out and redirects to the login page.
func (s *Service) Logout(c *fiber.Ctx) error {
	if err := s.h.SignOut(c, scope.ByName(handler.ScopeUser)); err != nil {
		log.Error().Err(err).Msg("failed to sign out user")
	}

	return c.Redirect(login.Path)
}
