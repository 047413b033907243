package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/seodesk/seodesk/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault verifies the built-in values
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "seodesk.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10*time.Second, cfg.News.Timeout)
	assert.Equal(t, time.Second, cfg.News.Delay)
	assert.Equal(t, 7, cfg.News.WindowDays)
	assert.Equal(t, 30, cfg.News.ArchiveDays)
	assert.Equal(t, 30*time.Second, cfg.SEO.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Diagnostics.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Diagnostics.CommandTimeout)
	assert.NoError(t, cfg.Validate())
}

// TestLoad_EnvOverrides verifies environment variables win over the file
func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "storage:\n  dsn: from-file.db\nlogging:\n  level: warn\n")
	t.Setenv(EnvDB, "from-env.db")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvUserAgent, "custom-agent")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "custom-agent", cfg.SEO.UserAgent)
}

// TestLoad_DefaultPath verifies the home directory lookup
func TestLoad_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvDB, "")

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".seodesk", "config.yaml"), path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "seodesk.db", cfg.Storage.DSN)
}

// TestLoad_InvalidLogLevel verifies validation runs after loading
func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: loud\n")
	t.Setenv(EnvLogLevel, "")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

// TestValidate verifies each rejected value
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty dsn", func(c *Config) { c.Storage.DSN = "" }},
		{"zero news timeout", func(c *Config) { c.News.Timeout = 0 }},
		{"negative seo timeout", func(c *Config) { c.SEO.Timeout = -time.Second }},
		{"zero command timeout", func(c *Config) { c.Diagnostics.CommandTimeout = 0 }},
		{"negative delay", func(c *Config) { c.News.Delay = -time.Second }},
		{"negative window", func(c *Config) { c.News.WindowDays = -1 }},
		{"negative archive", func(c *Config) { c.News.ArchiveDays = -1 }},
		{"zero archive", func(c *Config) { c.News.ArchiveDays = 0 }},
		{"feed without url", func(c *Config) { c.News.Feeds = []sources.FeedConfig{{Name: "x"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidValue)
		})
	}

	cfg := Default()
	cfg.News.Delay = 0
	assert.NoError(t, cfg.Validate(), "Zero delay is allowed")
}
