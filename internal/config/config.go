// Package config loads service configuration from config.toml and
// PENOMORAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"penomoran/internal/core/calendar"
)

// EnvPrefix is the prefix of every environment override, e.g. PENOMORAN_DATABASE_DSN.
const EnvPrefix = "PENOMORAN"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Auth      AuthConfig
	Numbering NumberingConfig
	Legacy    LegacyConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	DSN             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// AuthConfig holds bearer token verification settings. Tokens are issued by
// the portal; an empty secret disables verification.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// Enabled reports whether requests must carry a valid token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// NumberingConfig holds document numbering settings
type NumberingConfig struct {
	// HijriStrategy is "precise" or "approximate".
	HijriStrategy string
}

// LegacyConfig holds settings of the legacy letter-number utility
type LegacyConfig struct {
	Enabled bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PENOMORAN_ prefix (e.g., PENOMORAN_DATABASE_DSN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/penomoran")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	return FromViper(v)
}

// FromViper builds the configuration from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("legacy.enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxConns:        v.GetInt("database.max_conns"),
			MinConns:        v.GetInt("database.min_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
		},
		Numbering: NumberingConfig{
			HijriStrategy: v.GetString("numbering.hijri_strategy"),
		},
		Legacy: LegacyConfig{
			Enabled: v.GetBool("legacy.enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "penomoran"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 25
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30 * time.Minute
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Numbering.HijriStrategy == "" {
		cfg.Numbering.HijriStrategy = calendar.StrategyPrecise
	}
}

func (c *Config) validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (env %s_DATABASE_DSN)", EnvPrefix)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) exceeds database.max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if _, err := calendar.StrategyByName(c.Numbering.HijriStrategy); err != nil {
		return fmt.Errorf("numbering.hijri_strategy: %w", err)
	}
	if c.IsProduction() && !c.Auth.Enabled() {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// HijriStrategy returns the configured strategy for letter numbers.
func (c *Config) HijriStrategy() calendar.HijriStrategy {
	s, err := calendar.StrategyByName(c.Numbering.HijriStrategy)
	if err != nil {
		return calendar.PreciseHijri{}
	}
	return s
}
