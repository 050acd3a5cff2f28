package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validStoreDrivers = []string{"file", "postgres", "sqlite", "memory"}
)

type Config struct {
	Token                 string `env:"BOT_TOKEN"`
	GuildID               string `env:"GUILD_ID"`
	NotificationChannelID string `env:"NOTIFICATION_CHANNEL_ID"`

	MinAccountAgeDays int           `env:"MIN_ACCOUNT_AGE_DAYS" envDefault:"3"`
	ButtonCooldown    time.Duration `env:"BUTTON_COOLDOWN" envDefault:"5s"`
	StatusInterval    time.Duration `env:"STATUS_INTERVAL" envDefault:"15s"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"file"`
	StorePath   string `env:"STORE_PATH" envDefault:"data.json"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"database.db"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"verifybot"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	KeepAliveAddr string `env:"KEEPALIVE_ADDR" envDefault:":8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the process environment and
// validates it. The caller is expected to load any .env file first.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("BOT_TOKEN is not set")
	}

	if !slices.Contains(validStoreDrivers, c.StoreDriver) {
		return fmt.Errorf("invalid store driver %q", c.StoreDriver)
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	if c.ButtonCooldown <= 0 {
		return errors.New("BUTTON_COOLDOWN must be bigger than 0")
	}

	if c.StatusInterval <= 0 {
		return errors.New("STATUS_INTERVAL must be bigger than 0")
	}

	if c.MinAccountAgeDays < 0 {
		return errors.New("MIN_ACCOUNT_AGE_DAYS can't be negative")
	}

	return nil
}

// PostgresDSN builds a lib/pq connection string from the DB_* settings.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// KeepAliveEnabled reports whether the keep-alive HTTP server should run.
func (c *Config) KeepAliveEnabled() bool {
	return c.KeepAliveAddr != "" && c.KeepAliveAddr != "off"
}
