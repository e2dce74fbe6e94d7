// Package config provides configuration management for the adboard
// service. It layers defaults, an optional YAML config file, and
// environment variables, with env vars taking precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Server defaults
const (
	defaultServerAddress     = ":8080"
	defaultServerReadTimeout = 15 * time.Second
	// A resolve that exhausts every fetch retry takes over a minute;
	// the write timeout has to outlast it.
	defaultServerWriteTimeout = 90 * time.Second
	defaultServerIdleTimeout  = 60 * time.Second
)

// Config represents the application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	Encoding    string `mapstructure:"encoding"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// FetcherConfig holds listing page fetch settings.
type FetcherConfig struct {
	MaxRetries     int           `mapstructure:"max_retries"`
	BaseDelay      time.Duration `mapstructure:"base_delay"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	MaxRedirects   int           `mapstructure:"max_redirects"`
}

// CacheConfig holds parse cache and mirror retention settings.
type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("app environment must be specified")
	}
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %s", c.App.Environment)
	}

	if c.Server.Address == "" {
		return errors.New("server address must be specified")
	}
	if c.Database.Host == "" {
		return errors.New("database host must be specified")
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Fetcher.MaxRetries < 0 {
		return fmt.Errorf("fetcher max_retries must not be negative, got %d", c.Fetcher.MaxRetries)
	}

	return nil
}

// Load loads configuration from defaults, an optional config file, and
// environment variables. Environment variables take precedence.
func Load() (*Config, error) {
	// .env is optional; missing files are fine.
	_ = godotenv.Load()

	v := viper.New()
	setupViper(v)
	setDefaults(v)

	// Config file is optional too.
	_ = v.ReadInConfig()

	if err := bindEnvironmentVariables(v); err != nil {
		return nil, fmt.Errorf("bind environment variables: %w", err)
	}

	applyDevelopmentLogging(v)

	cfg, err := decode(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViper configures Viper for environment variable and config file reading.
func setupViper(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app", map[string]any{
		"name":        "adboard",
		"version":     "1.0.0",
		"environment": "production",
		"debug":       false,
	})

	v.SetDefault("logger", map[string]any{
		"level":       "info",
		"development": false,
		"encoding":    "json",
	})

	v.SetDefault("server", map[string]any{
		"address":       defaultServerAddress,
		"read_timeout":  defaultServerReadTimeout.String(),
		"write_timeout": defaultServerWriteTimeout.String(),
		"idle_timeout":  defaultServerIdleTimeout.String(),
	})

	v.SetDefault("database", map[string]any{
		"host":     "localhost",
		"port":     5432,
		"user":     "postgres",
		"password": "",
		"dbname":   "adboard",
		"sslmode":  "disable",
	})

	v.SetDefault("fetcher", map[string]any{
		"max_retries":     4,
		"base_delay":      "500ms",
		"attempt_timeout": "12s",
		"max_redirects":   5,
	})

	v.SetDefault("cache", map[string]any{
		"ttl":            "24h",
		"sweep_interval": "10m",
	})
}

// bindEnvironmentVariables binds environment variables to config keys.
func bindEnvironmentVariables(v *viper.Viper) error {
	bindings := map[string][]string{
		"app.environment":   {"APP_ENV"},
		"app.debug":         {"APP_DEBUG"},
		"logger.level":      {"LOG_LEVEL"},
		"logger.encoding":   {"LOG_FORMAT"},
		"server.address":    {"SERVER_ADDRESS"},
		"database.host":     {"DB_HOST"},
		"database.port":     {"DB_PORT"},
		"database.user":     {"DB_USER"},
		"database.password": {"DB_PASSWORD"},
		"database.dbname":   {"DB_NAME"},
		"database.sslmode":  {"DB_SSLMODE"},
		"cache.ttl":         {"CACHE_TTL"},
	}

	for key, envVars := range bindings {
		args := append([]string{key}, envVars...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	return nil
}

// applyDevelopmentLogging adjusts logging settings for debug and
// development modes. APP_DEBUG enables debug logs in any environment;
// console encoding is a development-only nicety.
func applyDevelopmentLogging(v *viper.Viper) {
	if v.GetBool("app.debug") {
		v.Set("logger.level", "debug")
	}

	if v.GetString("app.environment") == "development" {
		v.Set("logger.development", true)
		v.Set("logger.encoding", "console")
	}
}

// decode maps raw settings onto the Config struct, parsing duration
// strings like "500ms" along the way.
func decode(settings map[string]any) (*Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, err
	}

	return &cfg, nil
}
