package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penomoran/internal/core/calendar"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("PENOMORAN_DATABASE_DSN", "postgres://localhost/penomoran")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "penomoran", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, calendar.StrategyPrecise, cfg.Numbering.HijriStrategy)
	assert.Equal(t, calendar.StrategyPrecise, cfg.HijriStrategy().Name())
	assert.True(t, cfg.Legacy.Enabled)
	assert.False(t, cfg.Auth.Enabled())
}

func TestFromViper_TOMLAndEnv(t *testing.T) {
	t.Setenv("PENOMORAN_NUMBERING_HIJRI_STRATEGY", "approximate")

	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
[app]
port = "9090"

[database]
dsn = "postgres://db/penomoran"
max_conns = 10

[numbering]
hijri_strategy = "precise"

[legacy]
enabled = false
`)))

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 10, cfg.Database.MaxConns)
	assert.Equal(t, "approximate", cfg.Numbering.HijriStrategy)
	assert.False(t, cfg.Legacy.Enabled)
}

func TestFromViper_Invalid(t *testing.T) {
	t.Run("missing dsn", func(t *testing.T) {
		t.Setenv("PENOMORAN_DATABASE_DSN", "")
		_, err := FromViper(viper.New())
		assert.ErrorContains(t, err, "database.dsn")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		t.Setenv("PENOMORAN_DATABASE_DSN", "postgres://localhost/x")
		t.Setenv("PENOMORAN_NUMBERING_HIJRI_STRATEGY", "lunar")
		_, err := FromViper(viper.New())
		assert.ErrorContains(t, err, "hijri_strategy")
	})

	t.Run("production without auth", func(t *testing.T) {
		t.Setenv("PENOMORAN_DATABASE_DSN", "postgres://localhost/x")
		t.Setenv("PENOMORAN_APP_ENV", "production")
		_, err := FromViper(viper.New())
		assert.ErrorContains(t, err, "jwt_secret")
	})
}
