package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lewisnorthcott/sitesinc-offline/internal/flagx"
)

// jsonConfig mirrors Config with pointer fields so that a config file
// only overrides the fields it actually mentions.
type jsonConfig struct {
	APIBaseURL          *string   `json:"api_base_url"`
	AuthToken           *string   `json:"auth_token"`
	CacheDir            *string   `json:"cache_dir"`
	FilesDir            *string   `json:"files_dir"`
	PrefsDir            *string   `json:"prefs_dir"`
	PingPath            *string   `json:"ping_path"`
	OnlineCheckInterval *duration `json:"online_check_interval"`
	RequestTimeout      *duration `json:"request_timeout"`
	DownloadTimeout     *duration `json:"download_timeout"`
	LogLevel            *string   `json:"log_level"`
}

// duration accepts either a time.ParseDuration string ("15s") or a
// plain number of nanoseconds.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// parseJSON overlays cfg with values from the file named by -c/-config,
// if any.
func parseJSON(cfg *Config) error {
	path := flagx.ConfigFilePath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc jsonConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.APIBaseURL != nil {
		cfg.APIBaseURL = *fc.APIBaseURL
	}
	if fc.AuthToken != nil {
		cfg.AuthToken = *fc.AuthToken
	}
	if fc.CacheDir != nil {
		cfg.CacheDir = *fc.CacheDir
	}
	if fc.FilesDir != nil {
		cfg.FilesDir = *fc.FilesDir
	}
	if fc.PrefsDir != nil {
		cfg.PrefsDir = *fc.PrefsDir
	}
	if fc.PingPath != nil {
		cfg.PingPath = *fc.PingPath
	}
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.DownloadTimeout != nil {
		cfg.DownloadTimeout = fc.DownloadTimeout.Duration
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	return nil
}
