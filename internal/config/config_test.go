package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"MAX_PAGES", "CURRENCY", "BANK", "CATEGORY_RULES", "PAGE_WORKERS", "GC_EVERY_PAGES",
	"SERVER_HOST", "SERVER_PORT", "MAX_UPLOAD_BYTES", "RATE_LIMIT_PER_SECOND", "RATE_LIMIT_BURST",
	"LOG_LEVEL", "LOG_FORMAT", "METRICS_ENABLED",
}

// clearEnv blanks every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Analysis.MaxPages)
	assert.Equal(t, "KZT", cfg.Analysis.Currency)
	assert.Equal(t, "kaspi", cfg.Analysis.Bank)
	assert.Equal(t, 1, cfg.Analysis.PageWorkers)
	assert.Equal(t, 5, cfg.Analysis.GCEveryPages)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, ":8000", cfg.Server.Addr())
	assert.Equal(t, 1_000_000, cfg.Server.MaxUploadBytes)
	assert.Equal(t, 10, cfg.Server.RateLimitPerSecond)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_PAGES", "5")
	t.Setenv("BANK", "auto")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("PAGE_WORKERS", "not-a-number")

	cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Analysis.MaxPages)
	assert.Equal(t, "auto", cfg.Analysis.Bank)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, 1, cfg.Analysis.PageWorkers)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even empty.
	os.Unsetenv("CURRENCY")
	os.Unsetenv("MAX_PAGES")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CURRENCY=USD\nMAX_PAGES=12\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("CURRENCY")
		os.Unsetenv("MAX_PAGES")
	})

	cfg, err := LoadFiles(path)
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Analysis.Currency)
	assert.Equal(t, 12, cfg.Analysis.MaxPages)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero pages", func(c *Config) { c.Analysis.MaxPages = 0 }},
		{"zero workers", func(c *Config) { c.Analysis.PageWorkers = 0 }},
		{"negative gc", func(c *Config) { c.Analysis.GCEveryPages = -1 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero upload", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"zero rate", func(c *Config) { c.Server.RateLimitBurst = 0 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.env"))
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
