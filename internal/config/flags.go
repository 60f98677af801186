package config

import (
	"flag"
	"time"

	"github.com/lewisnorthcott/sitesinc-offline/internal/flagx"
)

// parseFlags overlays cfg with command line flags. Flags owned by other
// components (such as -config) are filtered out first so that this flag
// set does not reject them.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("sitesinc-offline", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.AuthToken, "t", cfg.AuthToken, "session token")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval/time.Second), "online check interval in seconds")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-a", "-t", "-l", "-i"})); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	return nil
}
