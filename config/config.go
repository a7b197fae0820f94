// Package config loads service settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config models parcelflow.yml.
type Config struct {
	Listen      string `yaml:"listen"`
	DatabaseURL string `yaml:"database_url"`
	JWTSecret   string `yaml:"jwt_secret"`
	LogLevel    string `yaml:"log_level"`
}

// Load reads the config file at path (missing file is fine) and applies
// environment overrides: LISTEN_ADDR, DATABASE_URL, JWT_SECRET, LOG_LEVEL.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Listen:   ":3000",
		LogLevel: "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env-only configuration
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, cfg.Validate()
}

// Validate ensures the settings a running server cannot do without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: database_url (or DATABASE_URL) is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: jwt_secret (or JWT_SECRET) is required")
	}
	return nil
}
