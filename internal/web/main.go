package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/scopegate/scopegate/internal/config"
	fiberlogger "github.com/scopegate/scopegate/internal/logger/adapter/fiber"
	"github.com/scopegate/scopegate/internal/web/handler/admin"
	oidchandler "github.com/scopegate/scopegate/internal/web/handler/auth/oidc"
	"github.com/scopegate/scopegate/internal/web/handler/dashboard"
	"github.com/scopegate/scopegate/internal/web/handler/login"
	"github.com/scopegate/scopegate/internal/web/handler/logout"
	"github.com/scopegate/scopegate/internal/web/helper"
	authmiddleware "github.com/scopegate/scopegate/internal/web/middleware/auth"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	helper       *helper.Helper
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	s.alive.Store(true)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "ScopeGate",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	// access logging, optionally muting the health check endpoint
	var skipLogging func(c *fiber.Ctx) bool

	if cfg.Log.DisableCheckAlive {
		skipLogging = func(c *fiber.Ctx) bool {
			return c.Path() == "/checkalive"
		}
	}

	app.Use(fiberlogger.New(fiberlogger.Config{Config: cfg.Log, Next: skipLogging}))

	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}

	app.Get("/checkalive", func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	// scope mapping table, frozen before the first request
	scopes := NewScopeRegistry(db)
	h := helper.New(scopes)
	service.helper = h

	// authentication proxy injection
	app.Use(authmiddleware.New(authmiddleware.Config{
		Scopes: scopes,
		Expiry: cfg.Webserver.Session.ExpiryTime,
		Secure: !cfg.DevMode,
	}))

	// init handlers (they register their own routes and guards)
	initHandler := func(name string, err error) {
		if err != nil {
			log.Fatal().Err(err).Str("handler", name).Msg("failed to init handler")
		}
	}

	initHandler("login", login.Handler.Init(app, cfg, db, h))
	initHandler("logout", logout.Handler.Init(app, cfg, db, h))
	initHandler("oidc", oidchandler.Handler.Init(app, cfg, db, h))
	initHandler("dashboard", dashboard.Handler.Init(app, cfg, db, h))
	initHandler("admin", admin.Handler.Init(app, cfg, db, h))

	// redirect root to dashboard (the guard sends signed-out visitors to login)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(dashboard.Path)
	})

	return service
}

// Addr returns the listen address from the configuration.
func (s *Service) Addr() string {
	return fmt.Sprintf(":%d", s.cfg.Webserver.Port)
}
