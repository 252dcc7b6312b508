package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Supported DB_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the application settings.
type Config struct {
	AppPort      string
	DBDriver     string
	DatabaseDSN  string
	RabbitMQURL  string
	LogLevel     string
	LogFormat    string
	SeedProducts bool
}

// New returns a viper instance with the application defaults registered and
// environment lookup enabled.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "thestore.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SEED_PRODUCTS", false)
	v.AutomaticEnv()
	return v
}

// Load reads an optional .env file into the environment and then builds the
// Config from v. A missing .env file is not an error.
func Load(v *viper.Viper, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromViper(v)
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:      v.GetString("APP_PORT"),
		DBDriver:     strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:  v.GetString("DATABASE_DSN"),
		RabbitMQURL:  v.GetString("RABBITMQ_URL"),
		LogLevel:     strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:    strings.ToLower(v.GetString("LOG_FORMAT")),
		SeedProducts: v.GetBool("SEED_PRODUCTS"),
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres:
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for driver %q", cfg.DBDriver)
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("unsupported LOG_FORMAT %q", cfg.LogFormat)
	}
	if !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}

	return cfg, nil
}

// EventsEnabled reports whether catalog events should be published.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}
