// Package config reads analyzer settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Analysis      AnalysisConfig
	Server        ServerConfig
	Log           LogConfig
	Observability ObservabilityConfig
}

type AnalysisConfig struct {
	MaxPages      int
	Currency      string
	Bank          string
	CategoryRules string // optional YAML rule file
	PageWorkers   int
	GCEveryPages  int
}

type ServerConfig struct {
	Host               string
	Port               int
	MaxUploadBytes     int
	RateLimitPerSecond int
	RateLimitBurst     int
}

type LogConfig struct {
	Level  string
	Format string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables. Values from a .env
// file in the working directory are used for variables not already set.
func Load() (*Config, error) {
	return LoadFiles()
}

// LoadFiles is Load with explicit .env paths; missing files are ignored.
func LoadFiles(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	cfg := &Config{
		Analysis: AnalysisConfig{
			MaxPages:      getEnvAsInt("MAX_PAGES", 30),
			Currency:      getEnv("CURRENCY", "KZT"),
			Bank:          getEnv("BANK", "kaspi"),
			CategoryRules: getEnv("CATEGORY_RULES", ""),
			PageWorkers:   getEnvAsInt("PAGE_WORKERS", 1),
			GCEveryPages:  getEnvAsInt("GC_EVERY_PAGES", 5),
		},
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", ""),
			Port:               getEnvAsInt("SERVER_PORT", 8000),
			MaxUploadBytes:     getEnvAsInt("MAX_UPLOAD_BYTES", 1_000_000),
			RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Analysis.MaxPages <= 0:
		return errors.New("MAX_PAGES must be positive")
	case c.Analysis.PageWorkers <= 0:
		return errors.New("PAGE_WORKERS must be positive")
	case c.Analysis.GCEveryPages < 0:
		return errors.New("GC_EVERY_PAGES must not be negative")
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("SERVER_PORT %d is out of range", c.Server.Port)
	case c.Server.MaxUploadBytes <= 0:
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	case c.Server.RateLimitPerSecond <= 0 || c.Server.RateLimitBurst <= 0:
		return errors.New("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive")
	case c.Log.Format != "console" && c.Log.Format != "json":
		return fmt.Errorf("LOG_FORMAT %q must be console or json", c.Log.Format)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
