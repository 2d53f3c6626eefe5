// Package common provides shared utilities for Controle-se
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the valuation server.
type Config struct {
	Environment  string        `toml:"environment"`
	BaseCurrency string        `toml:"base_currency"` // Currency all valuations are normalized to (default "BRL")
	Server       ServerConfig  `toml:"server"`
	Storage      StorageConfig `toml:"storage"`
	Clients      ClientsConfig `toml:"clients"`
	Logging      LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the transaction store path.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations.
type ClientsConfig struct {
	Quotes QuotesConfig `toml:"quotes"`
}

// QuotesConfig holds quote oracle API configuration.
type QuotesConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration.
func (c *QuotesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment:  "development",
		BaseCurrency: "BRL",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/txdb",
		},
		Clients: ClientsConfig{
			Quotes: QuotesConfig{
				BaseURL:   "https://quotes.controle-se.app/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a TOML config file and applies environment overrides.
// A missing path is not an error: defaults plus env overrides are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides maps CONTROLESE_* environment variables onto the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONTROLESE_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("CONTROLESE_BASE_CURRENCY"); v != "" {
		cfg.BaseCurrency = v
	}
	if v := os.Getenv("CONTROLESE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CONTROLESE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CONTROLESE_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("CONTROLESE_QUOTES_BASE_URL"); v != "" {
		cfg.Clients.Quotes.BaseURL = v
	}
	if v := os.Getenv("CONTROLESE_QUOTES_API_KEY"); v != "" {
		cfg.Clients.Quotes.APIKey = v
	}
	if v := os.Getenv("CONTROLESE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// IsProduction returns true when running in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
