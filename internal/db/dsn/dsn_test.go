package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scopegate/scopegate/internal/config"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "mysql",
			cfg: config.Config{
				DB: config.DB{
					Driver:   config.DBDriverMySQL,
					Host:     "db.local",
					Port:     3306,
					User:     "scopegate",
					Password: "pw",
					Name:     "scopegate",
					Extras:   "parseTime=true",
				},
			},
			want: "scopegate:pw@tcp(db.local:3306)/scopegate?parseTime=true",
		},
		{
			name: "postgres",
			cfg: config.Config{
				DB: config.DB{
					Driver:   config.DBDriverPostgres,
					Host:     "db.local",
					Port:     5432,
					User:     "scopegate",
					Password: "pw",
					Name:     "scopegate",
					Extras:   "sslmode=disable",
				},
			},
			want: "host=db.local port=5432 user=scopegate password=pw dbname=scopegate sslmode=disable",
		},
		{
			name: "sqlite with path",
			cfg: config.Config{
				DB: config.DB{
					Driver: config.DBDriverSQLite,
					Path:   "scopegate.db",
				},
			},
			want: "scopegate.db",
		},
		{
			name: "sqlite without path falls back to memory",
			cfg: config.Config{
				DB: config.DB{Driver: config.DBDriverSQLite},
			},
			want: ":memory:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Create(&tt.cfg))
		})
	}
}
