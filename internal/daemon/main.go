// Package daemon wires the database, the session store and the web service
// together and runs them.
package daemon

import (
	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	sessionmysql "github.com/gofiber/storage/mysql"
	sessionpostgres "github.com/gofiber/storage/postgres"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/scopegate/scopegate/internal/config"
	"github.com/scopegate/scopegate/internal/db/dsn"
	"github.com/scopegate/scopegate/internal/db/models"
	"github.com/scopegate/scopegate/internal/web"
	"github.com/scopegate/scopegate/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(d.webService.Addr())
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Admin{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	seed(cfg, db)

	session.Init(sessionStorage(cfg))

	return &Daemon{
		webService: web.New(cfg, db),
	}
}

func openDialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.Driver {
	case config.DBDriverPostgres:
		return gormpostgres.Open(dsn.Create(cfg))
	case config.DBDriverSQLite:
		return sqlite.Open(dsn.Create(cfg))
	default:
		return gormmysql.Open(dsn.Create(cfg))
	}
}

// sessionStorage picks the session backend matching the database driver.
// SQLite deployments fall back to fiber's in-memory store; sessions then do
// not survive a restart.
func sessionStorage(cfg *config.Config) storage.Storage {
	switch cfg.DB.Driver {
	case config.DBDriverMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	case config.DBDriverPostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	default:
		log.Warn().Str("driver", cfg.DB.Driver).Msg("no persistent session backend, using in-memory store")

		return nil
	}
}
