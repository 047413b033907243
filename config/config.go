// Package config loads seodesk settings from ~/.seodesk/config.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/seodesk/seodesk/logger"
	"github.com/seodesk/seodesk/sources"
)

// Environment variables that override file settings.
const (
	EnvDB        = "SEODESK_DB"
	EnvLogLevel  = "SEODESK_LOG_LEVEL"
	EnvUserAgent = "SEODESK_USER_AGENT"
)

// Custom errors for configuration
var (
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidValue    = errors.New("invalid config value")
)

// StorageConfig locates the news database.
type StorageConfig struct {
	// DSN is the SQLite database path.
	DSN string `yaml:"dsn"`
}

// NewsConfig controls news aggregation.
type NewsConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	Delay       time.Duration `yaml:"delay"`
	WindowDays  int           `yaml:"window_days"`
	ArchiveDays int           `yaml:"archive_days"`
	// Feeds are RSS or Atom sources run after the built-in ones.
	Feeds []sources.FeedConfig `yaml:"feeds"`
}

// SEOConfig controls page analysis.
type SEOConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// DiagnosticsConfig controls the site probes.
type DiagnosticsConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

// Config is the complete application configuration.
type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	Logging     logger.Config     `yaml:"logging"`
	News        NewsConfig        `yaml:"news"`
	SEO         SEOConfig         `yaml:"seo"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{DSN: "seodesk.db"},
		Logging: logger.Config{Level: "info"},
		News: NewsConfig{
			Timeout:     10 * time.Second,
			Delay:       time.Second,
			WindowDays:  7,
			ArchiveDays: 30,
		},
		SEO: SEOConfig{
			Timeout: 30 * time.Second,
		},
		Diagnostics: DiagnosticsConfig{
			Timeout:        10 * time.Second,
			CommandTimeout: 30 * time.Second,
		},
	}
}

// Load reads the defaults, overlays the file at path (DefaultPath when
// empty) and then the environment, and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from SEODESK_* variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.SEO.UserAgent = v
	}
}

// Validate checks every field is usable.
func (c *Config) Validate() error {
	if c.Storage.DSN == "" {
		return fmt.Errorf("%w: storage.dsn is empty", ErrInvalidValue)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	durations := map[string]time.Duration{
		"news.timeout":                c.News.Timeout,
		"seo.timeout":                 c.SEO.Timeout,
		"diagnostics.timeout":         c.Diagnostics.Timeout,
		"diagnostics.command_timeout": c.Diagnostics.CommandTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, name, d)
		}
	}
	if c.News.Delay < 0 {
		return fmt.Errorf("%w: news.delay must not be negative", ErrInvalidValue)
	}
	if c.News.WindowDays < 0 {
		return fmt.Errorf("%w: news.window_days must not be negative", ErrInvalidValue)
	}
	if c.News.ArchiveDays <= 0 {
		return fmt.Errorf("%w: news.archive_days must be positive, got %d", ErrInvalidValue, c.News.ArchiveDays)
	}

	for i, feed := range c.News.Feeds {
		if feed.Name == "" || feed.URL == "" {
			return fmt.Errorf("%w: news.feeds[%d] needs a name and a url", ErrInvalidValue, i)
		}
	}

	return nil
}
