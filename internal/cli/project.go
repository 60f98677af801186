package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
	"github.com/lewisnorthcott/sitesinc-offline/internal/sync"
)

// Projects lists the projects the user can work in, cache first.
func (a *App) Projects(ctx context.Context) error {
	show := func(source string, projects []models.Project) {
		printlnFn(fmt.Sprintf("%d projects (%s)", len(projects), source))
		for _, p := range projects {
			printlnFn("  " + renderProject(p))
		}
	}

	shownCached := false
	projects, from, err := a.engine.FetchProjects(ctx, func(cached []models.Project) {
		shownCached = true
		show("cached", cached)
	})
	if err != nil {
		printlnFn("Error:", describeFetchError(err))
		return err
	}
	if from == sync.ServedFromRemote || !shownCached {
		show(string(from), projects)
	}
	return nil
}

func renderProject(p models.Project) string {
	if p.Reference != "" {
		return fmt.Sprintf("#%d %s (%s)", p.ID, p.Name, p.Reference)
	}
	return fmt.Sprintf("#%d %s", p.ID, p.Name)
}

// Use selects the project the other commands operate on.
func (a *App) Use(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: use <projectId>")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		printlnFn("Usage: use <projectId>")
		return nil
	}

	a.projectID = id
	enabled, err := a.engine.OfflineMode(id)
	if err != nil {
		a.log.Warn(ctx, "offline flag read failed", "project_id", id, "error", err)
	}
	if enabled {
		printlnFn(fmt.Sprintf("Using project %d (offline mode on).", id))
	} else {
		printlnFn(fmt.Sprintf("Using project %d.", id))
	}

	if last, ok, err := a.prefs.LastViewedDrawing(id); err == nil && ok {
		printlnFn(fmt.Sprintf("Last viewed drawing: %d (open %d to continue).", last, last))
	}
	return nil
}

// Status summarizes connectivity, session, and per-project sync state.
func (a *App) Status(ctx context.Context) error {
	if a.monitor.Online() {
		printlnFn("Connectivity: online")
	} else {
		printlnFn("Connectivity: offline")
	}
	if a.isLoggedIn() {
		printlnFn("Session: active")
	} else {
		printlnFn("Session: logged out")
	}

	if a.projectID != 0 {
		enabled, err := a.engine.OfflineMode(a.projectID)
		if err != nil {
			a.log.Warn(ctx, "offline flag read failed", "project_id", a.projectID, "error", err)
		}
		printlnFn(fmt.Sprintf("Project %d offline mode: %v", a.projectID, enabled))

		st := a.engine.Tracker().State(a.projectID)
		switch {
		case st.IsLoading:
			printlnFn(fmt.Sprintf("Download in progress: %d%%", int(st.Progress*100)))
		case st.HasError:
			printlnFn("Last download failed.")
		case st.Progress == 1:
			printlnFn("Last download completed.")
		}
	}

	if n, err := a.recorder.QueueLength(); err == nil && n > 0 {
		printlnFn(fmt.Sprintf("Queued access events: %d", n))
	}
	return nil
}

// Flush retries delivery of queued access events.
func (a *App) Flush(ctx context.Context) error {
	if err := a.recorder.Flush(ctx); err != nil {
		printlnFn("Flush failed:", err.Error())
		return err
	}
	n, err := a.recorder.QueueLength()
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Flush done, %d events still queued.", n))
	return nil
}
