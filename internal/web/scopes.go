package web

import (
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/scopegate/scopegate/internal/db/models"
	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/handler"
	"github.com/scopegate/scopegate/internal/web/handler/admin"
	"github.com/scopegate/scopegate/internal/web/handler/dashboard"
	"github.com/scopegate/scopegate/internal/web/handler/login"
)

// NewScopeRegistry builds and freezes the scope mapping table: the user and
// admin scopes, each with gorm-backed serialization.
func NewScopeRegistry(db *gorm.DB) *scope.Registry {
	reg := scope.NewRegistry()

	mustRegister(reg, scope.Mapping{
		Name:     handler.ScopeUser,
		Resource: &models.User{},
		Routes: scope.Routes{
			SignInPath:       login.Path,
			AfterSignInPath:  dashboard.Path,
			AfterSignOutPath: login.Path,
		},
		SerializeKey: func(resource any) (string, error) {
			user, ok := resource.(*models.User)
			if !ok {
				return "", errors.New("resource is not a user")
			}

			return strconv.FormatUint(user.ID, 10), nil
		},
		Find: findByID[models.User](db),
	})

	mustRegister(reg, scope.Mapping{
		Name:     handler.ScopeAdmin,
		Resource: &models.Admin{},
		Routes: scope.Routes{
			SignInPath:       admin.LoginPath,
			AfterSignInPath:  admin.Path,
			AfterSignOutPath: admin.LoginPath,
		},
		SerializeKey: func(resource any) (string, error) {
			adm, ok := resource.(*models.Admin)
			if !ok {
				return "", errors.New("resource is not an admin")
			}

			return strconv.FormatUint(adm.ID, 10), nil
		},
		Find: findByID[models.Admin](db),
	})

	reg.Freeze()

	return reg
}

// activatable covers the resource models loaded from sessions.
type activatable interface {
	models.User | models.Admin
}

// findByID loads a resource by its serialized primary key. Deleted or
// deactivated records resolve to no resource, which clears the session
// authentication for the scope.
func findByID[T activatable](db *gorm.DB) func(key string) (any, error) {
	return func(key string) (any, error) {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			// a malformed key is a stale session, not a server fault
			return nil, nil //nolint:nilerr
		}

		var record T
		if err := db.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}

			return nil, err
		}

		if !isActive(&record) {
			return nil, nil
		}

		return &record, nil
	}
}

func isActive(record any) bool {
	switch v := record.(type) {
	case *models.User:
		return v.Active
	case *models.Admin:
		return v.Active
	default:
		return false
	}
}

func mustRegister(reg *scope.Registry, m scope.Mapping) {
	if err := reg.Register(m); err != nil {
		log.Fatal().Err(err).Str("scope", string(m.Name)).Msg("failed to register scope")
	}
}
