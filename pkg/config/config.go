package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all console configuration
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Log     LogConfig
	OTel    OTelConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
}

// APIConfig holds settings for the ERP backend API
type APIConfig struct {
	// BaseURL is the root of the backend REST API, e.g. http://localhost:5000/api
	BaseURL string
	Timeout time.Duration
}

// SessionConfig holds token storage and refresh scheduling settings
type SessionConfig struct {
	// TokenFile is where the access/refresh token pair is persisted
	TokenFile string
	// RefreshLeeway is how long before access-token expiry the proactive
	// refresh fires
	RefreshLeeway time.Duration
	// MinRefreshDelay is the floor for the proactive refresh timer
	MinRefreshDelay time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level       string
	Development bool
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool
	ServiceName   string
	CollectorAddr string
}

// Load loads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// Missing .env is fine, environment variables may still be set
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read .env: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "vivae-erp-console")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_VERSION", "1.0.0")

	// API defaults
	v.SetDefault("API_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("API_TIMEOUT", "30s")

	// Session defaults
	v.SetDefault("SESSION_TOKEN_FILE", defaultTokenFile())
	v.SetDefault("SESSION_REFRESH_LEEWAY", "60s")
	v.SetDefault("SESSION_MIN_REFRESH_DELAY", "5s")

	// Log defaults
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", true)

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "vivae-erp-console")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
}

func bindConfig(v *viper.Viper, cfg *Config) {
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Version = v.GetString("APP_VERSION")

	cfg.API.BaseURL = strings.TrimRight(v.GetString("API_BASE_URL"), "/")
	cfg.API.Timeout = v.GetDuration("API_TIMEOUT")

	cfg.Session.TokenFile = v.GetString("SESSION_TOKEN_FILE")
	cfg.Session.RefreshLeeway = v.GetDuration("SESSION_REFRESH_LEEWAY")
	cfg.Session.MinRefreshDelay = v.GetDuration("SESSION_MIN_REFRESH_DELAY")

	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Development = v.GetBool("LOG_DEVELOPMENT")

	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("invalid API timeout: %s", c.API.Timeout)
	}
	if c.Session.TokenFile == "" {
		return fmt.Errorf("session token file is required")
	}
	if c.Session.RefreshLeeway <= 0 || c.Session.MinRefreshDelay <= 0 {
		return fmt.Errorf("refresh leeway and minimum delay must be positive")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".vivae", "tokens.json")
	}
	return filepath.Join(home, ".vivae", "tokens.json")
}
