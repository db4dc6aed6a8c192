// Package common provides shared utilities for gripinvest
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for gripinvest
type Config struct {
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Clients     ClientsConfig    `toml:"clients"`
	Logging     LoggingConfig    `toml:"logging"`
	Auth        AuthConfig       `toml:"auth"`
	Investment  InvestmentConfig `toml:"investment"`
	Valuation   ValuationConfig  `toml:"valuation"`
	Catalog     CatalogConfig    `toml:"catalog"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage backend settings.
type StorageConfig struct {
	Backend   string `toml:"backend"` // "surrealdb" (default) or "memory"
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey        string `toml:"api_key"`
	Model         string `toml:"model"`
	FallbackModel string `toml:"fallback_model"` // used when the primary model is overloaded
	Timeout       string `toml:"timeout"`
	RateLimit     int    `toml:"rate_limit"` // requests per second
}

// GetTimeout parses and returns the generation timeout
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`  // "console" or "json"
	Outputs  []string `toml:"outputs"` // "console", "file"
	FilePath string   `toml:"file_path"`
}

// InvestmentConfig holds lifecycle rules.
type InvestmentConfig struct {
	CancellationWindow string `toml:"cancellation_window"`
	MaturitySchedule   string `toml:"maturity_schedule"` // cron expression, empty disables
}

// GetCancellationWindow parses the cool-off window, defaulting to 24h.
func (c *InvestmentConfig) GetCancellationWindow() time.Duration {
	d, err := time.ParseDuration(c.CancellationWindow)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// ValuationConfig selects the valuation model.
type ValuationConfig struct {
	Model string `toml:"model"` // "simulated" or "book"
	Seed  int64  `toml:"seed"`  // 0 seeds from the clock
}

// CatalogConfig controls catalog bootstrap.
type CatalogConfig struct {
	Seed bool `toml:"seed"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:   "surrealdb",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "gripinvest",
			Database:  "gripinvest",
			Username:  "root",
			Password:  "root",
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:         "gemini-2.5-flash",
				FallbackModel: "gemini-2.0-flash",
				Timeout:       "15s",
				RateLimit:     2,
			},
		},
		Auth: AuthConfig{
			JWTSecret: "dev-jwt-secret-change-in-production",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/gripinvest.log",
		},
		Investment: InvestmentConfig{
			CancellationWindow: "24h",
			MaturitySchedule:   "@every 1h",
		},
		Valuation: ValuationConfig{
			Model: "simulated",
		},
		Catalog: CatalogConfig{
			Seed: true,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("GRIPINVEST_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("GRIPINVEST_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("GRIPINVEST_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("GRIPINVEST_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Storage overrides
	if v := os.Getenv("GRIPINVEST_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("GRIPINVEST_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("GRIPINVEST_STORAGE_NAMESPACE"); v != "" {
		config.Storage.Namespace = v
	}
	if v := os.Getenv("GRIPINVEST_STORAGE_DATABASE"); v != "" {
		config.Storage.Database = v
	}
	if v := os.Getenv("GRIPINVEST_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("GRIPINVEST_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}

	// Gemini key: service-specific names take priority over the generic Google one
	for _, name := range []string{"GRIPINVEST_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.Gemini.APIKey = v
			break
		}
	}
	if v := os.Getenv("GRIPINVEST_GEMINI_MODEL"); v != "" {
		config.Clients.Gemini.Model = v
	}

	if v := os.Getenv("GRIPINVEST_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}

	if v := os.Getenv("GRIPINVEST_CANCELLATION_WINDOW"); v != "" {
		config.Investment.CancellationWindow = v
	}
	if v := os.Getenv("GRIPINVEST_MATURITY_SCHEDULE"); v != "" {
		config.Investment.MaturitySchedule = v
	}

	if v := os.Getenv("GRIPINVEST_VALUATION_MODEL"); v != "" {
		config.Valuation.Model = strings.ToLower(v)
	}
	if v := os.Getenv("GRIPINVEST_VALUATION_SEED"); v != "" {
		if s, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Valuation.Seed = s
		}
	}

	if v := os.Getenv("GRIPINVEST_CATALOG_SEED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Catalog.Seed = b
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ValidateRequired returns the names of settings that must be changed before
// running in production.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Storage.Backend != "memory" && c.Storage.Address == "" {
		missing = append(missing, "storage.address")
	}
	if c.Auth.JWTSecret == "" || strings.HasPrefix(c.Auth.JWTSecret, "dev-") || c.Auth.JWTSecret == "change-me-in-production" {
		missing = append(missing, "auth.jwt_secret")
	}
	return missing
}
