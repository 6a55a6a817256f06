package oidc

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/scopegate/scopegate/internal/auth"
	"github.com/scopegate/scopegate/internal/config"
	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/handler"
	"github.com/scopegate/scopegate/internal/web/handler/login"
	"github.com/scopegate/scopegate/internal/web/helper"
)

const (
	// Path starts the OIDC flow for the user scope.
	Path = "/auth/oidc"

	// CallbackPath is the OAuth2 redirect target.
	CallbackPath = Path + "/callback"

	// stateKey is the session key holding the CSRF state token between
	// the begin and callback requests.
	stateKey = "oidc.state"
)

// Service is the OIDC login handler service.
type Service struct {
	cfg      *config.Config
	h        *helper.Helper
	provider *auth.OIDCProvider
}

// Handler is the OIDC handler.
var Handler = Service{}

// Init initializes the OIDC handler. It is a no-op when OIDC is disabled.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, h *helper.Helper) error {
	if app == nil || cfg == nil || db == nil || h == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	if !cfg.Auth.OIDC.Enabled {
		return nil
	}

	// provider discovery happens at startup, not per request
	provider, err := auth.NewOIDCProvider(context.Background(), &cfg.Auth.OIDC, db)
	if err != nil {
		return err
	}

	s.cfg = cfg
	s.h = h
	s.provider = provider

	app.Get(Path, s.Begin)
	app.Get(CallbackPath, s.Callback)

	return nil
}

// Begin redirects the browser to the OIDC provider's authorization URL.
func (s *Service) Begin(c *fiber.Ctx) error {
	p, err := s.h.Proxy(c)
	if err != nil {
		return err
	}

	state := auth.GenerateStateToken()
	p.RawSession().SetValue(stateKey, state)

	return c.Redirect(s.provider.GetAuthURL(state))
}

// Callback completes the flow: state check, code exchange, sign-in.
func (s *Service) Callback(c *fiber.Ctx) error {
	p, err := s.h.Proxy(c)
	if err != nil {
		return err
	}

	sess := p.RawSession()

	state, ok := sess.Value(stateKey)
	sess.DeleteValue(stateKey)

	if !ok || state == "" || c.Query("state") != state {
		log.Warn().Msg("oidc callback with missing or mismatched state")

		return c.Redirect(login.Path)
	}

	user, err := s.provider.HandleCallback(c.Context(), c.Query("code"))
	if err != nil {
		log.Error().Err(err).Msg("oidc callback failed")

		return c.Redirect(login.Path)
	}

	if err := s.h.SignIn(c, scope.ByResource(user)); err != nil {
		log.Error().Err(err).Msg("failed to sign in oidc user")

		return c.Redirect(login.Path)
	}

	return c.Redirect(s.h.AfterSignInPath(c, scope.ByResource(user)))
}
