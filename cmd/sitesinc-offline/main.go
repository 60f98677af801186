package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lewisnorthcott/sitesinc-offline/internal/accesslog"
	"github.com/lewisnorthcott/sitesinc-offline/internal/cli"
	"github.com/lewisnorthcott/sitesinc-offline/internal/config"
	"github.com/lewisnorthcott/sitesinc-offline/internal/logging"
	"github.com/lewisnorthcott/sitesinc-offline/internal/netx"
	"github.com/lewisnorthcott/sitesinc-offline/internal/prefs"
	"github.com/lewisnorthcott/sitesinc-offline/internal/remote"
	"github.com/lewisnorthcott/sitesinc-offline/internal/store"
	"github.com/lewisnorthcott/sitesinc-offline/internal/sync"
)

// Set via -ldflags at build time.
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
)

func main() {
	fmt.Printf("sitesinc-offline %s (built %s)\n", buildVersion, buildDate)
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks in the REPL until the user exits.
// Returning the error to main keeps deferred cleanups running on failure.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	st, err := store.New(cfg.CacheDir, cfg.FilesDir, log)
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}

	pr, err := prefs.Open(cfg.PrefsDir, log)
	if err != nil {
		return fmt.Errorf("opening preferences: %w", err)
	}
	defer func() {
		_ = pr.Close()
	}()

	instanceID, err := pr.InstanceID()
	if err != nil {
		return fmt.Errorf("reading client instance id: %w", err)
	}

	apiHTTP := &http.Client{Timeout: cfg.RequestTimeout}
	api := remote.NewHTTPClient(cfg.APIBaseURL, apiHTTP, instanceID, log)
	monitor := netx.NewMonitor(apiHTTP, cfg.APIBaseURL+cfg.PingPath, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Attachment downloads get their own client: large files need a far
	// more generous timeout than API calls.
	engine := sync.New(st, pr, api, monitor, sync.NewTracker(), &http.Client{Timeout: cfg.DownloadTimeout}, log)
	recorder := accesslog.NewRecorder(st, api, monitor, log)

	// Queued access events go out as soon as connectivity returns.
	monitor.Notify(func(online bool) {
		if !online {
			return
		}
		if err := recorder.Flush(ctx); err != nil {
			log.Warn(ctx, "access log flush failed", "error", err)
		}
	})

	monitor.Probe(ctx)
	go monitor.Run(ctx, cfg.OnlineCheckInterval)

	app := cli.NewApp(cfg, engine, recorder, api, pr, monitor, log)
	app.Run(ctx)
	return nil
}
