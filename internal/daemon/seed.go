package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/scopegate/scopegate/internal/config"
	"github.com/scopegate/scopegate/internal/db/models"
	"github.com/scopegate/scopegate/internal/uniuri"
)

const initialAdminPasswordLen = 24

// seed creates the initial admin account when the admin table is empty. The
// generated password is logged once; it must be changed after first login.
func seed(cfg *config.Config, db *gorm.DB) {
	var count int64

	db.Model(&models.Admin{}).Count(&count)

	if count == 0 {
		password := uniuri.NewLen(initialAdminPasswordLen)

		db.Create(
			&models.Admin{
				Username: "admin",
				Password: models.HashPassword(password),
				Active:   true,
			},
		)

		log.Warn().Str("username", "admin").Str("password", password).
			Msg("created initial admin account, change the password after first login")
	}

	// a demo user makes dev mode usable without LDAP or OIDC
	if cfg.DevMode {
		db.Model(&models.User{}).Count(&count)

		if count == 0 {
			db.Create(
				&models.User{
					Username:   "demo",
					Email:      "demo@example.com",
					Password:   models.HashPassword("demo"),
					Active:     true,
					AuthSource: models.AuthSourceLocal,
				},
			)

			log.Warn().Msg("dev mode: created demo user (demo/demo)")
		}
	}
}
