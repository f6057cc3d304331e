// Package config loads the dispatch runtime configuration from the
// environment, with an optional YAML override file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all runtime configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the embedder HTTP surface.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // "debug" or "release"
}

// StoreConfig configures the persistence gateway.
type StoreConfig struct {
	URL        string   `yaml:"url"`
	AuthSecret string   `yaml:"auth_secret"`
	AuthIssuer string   `yaml:"auth_issuer"`
	TokenTTL   Duration `yaml:"token_ttl"`
	Timeout    Duration `yaml:"timeout"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load builds the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: getEnv("DISPATCH_HOST", "0.0.0.0"),
			Port: getEnv("DISPATCH_PORT", "8090"),
			Mode: getEnv("DISPATCH_MODE", "release"),
		},
		Store: StoreConfig{
			URL:        getEnv("DISPATCH_STORE_URL", "http://localhost:7070"),
			AuthSecret: getEnv("DISPATCH_STORE_AUTH_SECRET", ""),
			AuthIssuer: getEnv("DISPATCH_STORE_AUTH_ISSUER", "dispatch"),
			TokenTTL:   getDuration("DISPATCH_STORE_TOKEN_TTL", 15*time.Minute),
			Timeout:    getDuration("DISPATCH_STORE_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level: getEnv("DISPATCH_LOG_LEVEL", "info"),
		},
	}
}

// LoadFile applies a YAML override file on top of the environment-derived
// configuration.
func LoadFile(path string) (*Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) Duration {
	value := os.Getenv(key)
	if value == "" {
		return Duration(fallback)
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return Duration(fallback)
	}
	return Duration(d)
}
