// Package config assembles the client configuration from, in order of
// increasing precedence: built-in defaults, an optional JSON file named
// by -c/-config, environment variables, and command line flags. The
// merged result is validated before use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	// APIBaseURL is the root of the backend REST API.
	APIBaseURL string `env:"SITESINC_API_URL" validate:"required,url"`
	// AuthToken is an optional session token. When empty the user is
	// expected to log in interactively.
	AuthToken string `env:"SITESINC_TOKEN"`
	// CacheDir holds the JSON metadata snapshots.
	CacheDir string `env:"SITESINC_CACHE_DIR" validate:"required"`
	// FilesDir holds the downloaded attachment files.
	FilesDir string `env:"SITESINC_FILES_DIR" validate:"required"`
	// PrefsDir holds the preferences database.
	PrefsDir string `env:"SITESINC_PREFS_DIR" validate:"required"`
	// PingPath is the API path probed to decide online/offline.
	PingPath string `env:"SITESINC_PING_PATH" validate:"required,startswith=/"`
	// OnlineCheckInterval is how often connectivity is probed.
	OnlineCheckInterval time.Duration `env:"SITESINC_ONLINE_CHECK_INTERVAL" validate:"gt=0"`
	// RequestTimeout bounds individual API requests.
	RequestTimeout time.Duration `env:"SITESINC_REQUEST_TIMEOUT" validate:"gt=0"`
	// DownloadTimeout bounds a single attachment download.
	DownloadTimeout time.Duration `env:"SITESINC_DOWNLOAD_TIMEOUT" validate:"gt=0"`
	LogLevel        string        `env:"SITESINC_LOG_LEVEL" validate:"oneof=debug info warn error"`
}

func (c *Config) LoadDefaults() {
	root := defaultDataRoot()
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.CacheDir = filepath.Join(root, "cache")
	c.FilesDir = filepath.Join(root, "files")
	c.PrefsDir = filepath.Join(root, "prefs")
	c.PingPath = "/api/health"
	c.OnlineCheckInterval = 15 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.DownloadTimeout = 10 * time.Minute
	c.LogLevel = "info"
}

// Load builds the effective configuration. Later sources override
// earlier ones field by field; sources that omit a field leave the
// previous value in place.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func parseEnv(cfg *Config) error {
	_ = godotenv.Load()
	if _, err := env.UnmarshalFromEnviron(cfg); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

func defaultDataRoot() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "sitesinc-offline")
}
