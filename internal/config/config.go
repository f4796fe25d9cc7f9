// Package config provides configuration management for the trust-graph
// service. Settings load from an optional YAML file (TRUSTGRAPH_CONFIG)
// and environment variables with the TRUSTGRAPH_ prefix; environment
// variables take precedence over the file, and every option has a sensible
// default.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the trust-graph service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Security SecurityConfig `yaml:"security"`
	Limits   LimitsConfig   `yaml:"limits"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"` // Server port (default: 7070)
	Host string `yaml:"host"` // Server host (default: 127.0.0.1)
}

// StorageConfig contains database configuration.
type StorageConfig struct {
	// Engine selects the storage backend: sqlite or postgres (default: sqlite).
	Engine string `yaml:"engine"`

	// DSN is the database connection string. For sqlite this is a file
	// path (default: ./data/trustgraph.db); for postgres a URL.
	DSN string `yaml:"dsn"`
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	// Mode is development or production (default: development). In
	// development mode API token auth is bypassed.
	Mode string `yaml:"mode"`

	// APIToken is the bearer token required in production mode.
	APIToken string `yaml:"api_token"`
}

// LimitsConfig contains request throttling settings.
type LimitsConfig struct {
	// RequestsPerSecond is the sustained request rate (default: 20).
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the maximum burst size (default: 40).
	Burst int `yaml:"burst"`
}

// Load builds the configuration from defaults, then the YAML file named by
// TRUSTGRAPH_CONFIG (if set), then TRUSTGRAPH_* environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("TRUSTGRAPH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// defaults returns a Config with every option at its default value.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 7070,
			Host: "127.0.0.1",
		},
		Storage: StorageConfig{
			Engine: "sqlite",
			DSN:    "./data/trustgraph.db",
		},
		Security: SecurityConfig{
			Mode: "development",
		},
		Limits: LimitsConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// applyEnv overlays TRUSTGRAPH_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("TRUSTGRAPH_PORT", cfg.Server.Port)
	cfg.Server.Host = getEnv("TRUSTGRAPH_HOST", cfg.Server.Host)
	cfg.Storage.Engine = getEnv("TRUSTGRAPH_STORAGE_ENGINE", cfg.Storage.Engine)
	cfg.Storage.DSN = getEnv("TRUSTGRAPH_DSN", cfg.Storage.DSN)
	cfg.Security.Mode = getEnv("TRUSTGRAPH_SECURITY_MODE", cfg.Security.Mode)
	cfg.Security.APIToken = getEnv("TRUSTGRAPH_API_TOKEN", cfg.Security.APIToken)
	cfg.Limits.RequestsPerSecond = getEnvFloat("TRUSTGRAPH_RATE_LIMIT", cfg.Limits.RequestsPerSecond)
	cfg.Limits.Burst = getEnvInt("TRUSTGRAPH_RATE_BURST", cfg.Limits.Burst)
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the variable exists but cannot be parsed, the default is used.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value. If the variable exists but cannot be parsed, the default is used.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
