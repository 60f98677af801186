package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lewisnorthcott/sitesinc-offline/internal/accesslog"
	"github.com/lewisnorthcott/sitesinc-offline/internal/auth"
	"github.com/lewisnorthcott/sitesinc-offline/internal/config"
	"github.com/lewisnorthcott/sitesinc-offline/internal/logging"
	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
	"github.com/lewisnorthcott/sitesinc-offline/internal/netx"
	"github.com/lewisnorthcott/sitesinc-offline/internal/prefs"
	"github.com/lewisnorthcott/sitesinc-offline/internal/remote"
	"github.com/lewisnorthcott/sitesinc-offline/internal/sync"
)

type App struct {
	config   *config.Config
	engine   *sync.Engine
	recorder *accesslog.Recorder
	api      *remote.HTTPClient
	prefs    *prefs.Store
	monitor  *netx.Monitor
	log      logging.Logger

	token     auth.Token
	projectID int
	perms     models.Permissions
	reader    *bufio.Reader
}

// NewApp assembles the console around an already wired engine. The console
// grants itself the full permission set; the backend still enforces the
// real one on every request.
func NewApp(cfg *config.Config, engine *sync.Engine, recorder *accesslog.Recorder,
	api *remote.HTTPClient, pr *prefs.Store, monitor *netx.Monitor, log logging.Logger) *App {

	a := &App{
		config:   cfg,
		engine:   engine,
		recorder: recorder,
		api:      api,
		prefs:    pr,
		monitor:  monitor,
		log:      log,
		perms:    models.AllPermissions(),
		reader:   bufio.NewReader(os.Stdin),
	}
	if cfg.AuthToken != "" {
		a.setToken(auth.New(cfg.AuthToken))
	}
	return a
}

func (a *App) setToken(t auth.Token) {
	a.token = t
	a.api.SetToken(t)
}

func (a *App) isLoggedIn() bool {
	return !a.token.Empty() && !a.token.Expired(time.Now())
}

// status renders the prompt suffix, e.g. "(project 42, online)".
func (a *App) status() string {
	parts := make([]string, 0, 3)
	if !a.isLoggedIn() {
		parts = append(parts, "logged out")
	}
	if a.projectID != 0 {
		parts = append(parts, fmt.Sprintf("project %d", a.projectID))
	}
	if a.monitor.Online() {
		parts = append(parts, "online")
	} else {
		parts = append(parts, "offline")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Run starts the interactive loop and blocks until the user exits or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) {
	printlnFn("SiteSinc offline console (type 'help' for commands)")

	if !a.isLoggedIn() {
		_ = a.Login(ctx)
	}

	// One line per whole percent keeps long downloads readable.
	lastPct := map[int]int{}
	a.engine.Tracker().Subscribe(func(projectID int, st sync.ProgressState) {
		if !st.IsLoading {
			return
		}
		pct := int(st.Progress * 100)
		if pct == lastPct[projectID] {
			return
		}
		lastPct[projectID] = pct
		printlnFn(fmt.Sprintf("project %d: %d%% downloaded", projectID, pct))
	})

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}
