package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/lewisnorthcott/sitesinc-offline/internal/sync"
)

// Download fetches every resource of the selected project for offline use.
func (a *App) Download(ctx context.Context) error {
	if a.projectID == 0 {
		printlnFn("No project selected. Use: use <projectId>")
		return nil
	}

	printlnFn(fmt.Sprintf("Downloading project %d for offline use...", a.projectID))
	if err := a.engine.DownloadAll(ctx, a.projectID, a.perms); err != nil {
		printlnFn("Download failed:", describeDownloadError(err))
		return err
	}
	printlnFn("Download complete.")
	return nil
}

// Offline toggles offline mode for the selected project. Enabling it
// triggers a full download; a failed download leaves the flag off.
// Disabling it removes the local copy.
func (a *App) Offline(ctx context.Context, args []string) error {
	if a.projectID == 0 {
		printlnFn("No project selected. Use: use <projectId>")
		return nil
	}
	if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
		printlnFn("Usage: offline on|off")
		return nil
	}

	if args[0] == "off" {
		if err := a.engine.SetOfflineMode(ctx, a.projectID, false); err != nil {
			printlnFn("Disabling offline mode failed:", err.Error())
			return err
		}
		printlnFn(fmt.Sprintf("Offline mode off for project %d, local copies removed.", a.projectID))
		return nil
	}

	if err := a.engine.SetOfflineMode(ctx, a.projectID, true); err != nil {
		printlnFn("Enabling offline mode failed:", err.Error())
		return err
	}
	if err := a.engine.DownloadAll(ctx, a.projectID, a.perms); err != nil {
		if offErr := a.engine.SetOfflineMode(ctx, a.projectID, false); offErr != nil {
			a.log.Error(ctx, "reverting offline mode failed", "project_id", a.projectID, "error", offErr)
		}
		printlnFn("Download failed, offline mode stays off:", describeDownloadError(err))
		return err
	}
	printlnFn(fmt.Sprintf("Project %d is now available offline.", a.projectID))
	return nil
}

func describeDownloadError(err error) string {
	var metaErr *sync.MetadataError
	var fileErr *sync.FileDownloadError
	var setupErr *sync.SetupError
	switch {
	case errors.Is(err, sync.ErrNetworkUnavailable):
		return "cannot download while offline"
	case errors.Is(err, sync.ErrDownloadInFlight):
		return "a download for this project is already running"
	case errors.As(err, &metaErr):
		return fmt.Sprintf("fetching %s metadata failed: %v", metaErr.Kind, metaErr.Err)
	case errors.As(err, &fileErr):
		return fmt.Sprintf("downloading %s file %q failed: %v", fileErr.Category, fileErr.FileName, fileErr.Err)
	case errors.As(err, &setupErr):
		return fmt.Sprintf("preparing local storage failed: %v", setupErr.Err)
	default:
		return err.Error()
	}
}
