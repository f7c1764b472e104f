// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	apperrors "trading-journal/internal/errors"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverFile     = "file"
	DriverREST     = "rest"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	UI        UIConfig        `mapstructure:"ui"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
}

// StoreConfig selects and configures the journal persistence backend.
type StoreConfig struct {
	Driver        string        `mapstructure:"driver" validate:"oneof=sqlite file rest postgres"`
	Path          string        `mapstructure:"path"`     // sqlite database or JSON/YAML document
	DSN           string        `mapstructure:"dsn"`      // postgres connection string
	BaseURL       string        `mapstructure:"base_url"` // remote journal API
	APIToken      string        `mapstructure:"api_token"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"gte=0,lte=10"`
	RateLimit     float64       `mapstructure:"rate_limit" validate:"gte=0"` // requests per second to base_url, 0 = unlimited
	DebugSQL      bool          `mapstructure:"debug_sql"`
}

// AnalyticsConfig holds engine-facing settings.
type AnalyticsConfig struct {
	Timezone string `mapstructure:"timezone"`
	// DeactivateLapsed makes `challenge status` deactivate a challenge whose
	// window has closed.
	DeactivateLapsed bool `mapstructure:"deactivate_lapsed"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge     int    `mapstructure:"max_age" validate:"gte=0"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trading-journal"
	}
	return filepath.Join(home, ".config", "trading-journal")
}

// ConfigPath returns the path of config.toml inside configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

// Default returns the configuration used when no file sets a value.
func Default(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	cfg := &Config{}
	if err := newViper(configDir).Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing default config: %w", err)
	}
	cfg.Dir = configDir
	return cfg, nil
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by a commented template and defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := newViper(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}
	cfg.Dir = configDir

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.path", filepath.Join(configDir, "journal.db"))
	v.SetDefault("store.timeout", 10*time.Second)
	v.SetDefault("store.retry_attempts", 3)
	v.SetDefault("store.rate_limit", 5.0)

	v.SetDefault("analytics.timezone", "Local")
	v.SetDefault("analytics.deactivate_lapsed", false)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", false)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "journal.log"))
	v.SetDefault("logging.max_size", 20)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("ui.time_format", "15:04")

	return v
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOURNAL_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("JOURNAL_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("JOURNAL_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("JOURNAL_API_URL"); v != "" {
		cfg.Store.BaseURL = v
	}
	if v := os.Getenv("JOURNAL_API_TOKEN"); v != "" {
		cfg.Store.APIToken = v
	}
	if v := os.Getenv("JOURNAL_TIMEZONE"); v != "" {
		cfg.Analytics.Timezone = v
	}
	if v := os.Getenv("JOURNAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

var validate = validator.New()

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverFile:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for the %s driver", apperrors.ErrConfigInvalid, c.Store.Driver)
		}
	case DriverREST:
		if c.Store.BaseURL == "" {
			return fmt.Errorf("%w: store.base_url is required for the rest driver", apperrors.ErrConfigInvalid)
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for the postgres driver", apperrors.ErrConfigInvalid)
		}
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
	}

	return nil
}

// Location resolves the analytics timezone. Empty and "Local" mean the
// system zone.
func (c *Config) Location() (*time.Location, error) {
	switch tz := strings.TrimSpace(c.Analytics.Timezone); tz {
	case "", "Local":
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %q", tz)
		}
		return loc, nil
	}
}

// Addr returns the host:port the HTTP API listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
