// Package dashboard provides the signed-in landing page for the user scope.
package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/scopegate/scopegate/internal/config"
	"github.com/scopegate/scopegate/internal/db/models"
	"github.com/scopegate/scopegate/internal/web/handler"
	"github.com/scopegate/scopegate/internal/web/helper"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard"
)

// Service is the dashboard handler service.
type Service struct {
	cfg   *config.Config
	users *helper.ScopeHelper
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler. The route is guarded by the user
// scope's authentication filter.
func (s *Service) Init(app *fiber.App, cfg *config.Config, _ *gorm.DB, h *helper.Helper) error {
	if app == nil || cfg == nil || h == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.users = h.For(handler.ScopeUser)

	app.Get(Path, s.users.RequireAuthenticated(), s.Get)

	return nil
}

// Get renders the dashboard for the current user.
func (s *Service) Get(c *fiber.Ctx) error {
	user, ok := s.users.Current(c).(*models.User)
	if !ok {
		// the guard ran, so a missing resource means the session broke mid-request
		return fiber.ErrUnauthorized
	}

	// count visits in the scope-namespaced session
	sess := s.users.Session(c)

	visits, _ := sess["visits"].(float64) // JSON numbers decode as float64
	sess["visits"] = visits + 1

	return c.Render(TemplateName, fiber.Map{
		"title":    s.cfg.Title,
		"username": user.Username,
		"email":    user.Email,
		"visits":   int(visits) + 1,
	})
}
