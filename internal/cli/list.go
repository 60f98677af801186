package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"

	"github.com/lewisnorthcott/sitesinc-offline/internal/common"
	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
	"github.com/lewisnorthcott/sitesinc-offline/internal/sync"
)

// List prints one resource collection of the selected project. The cached
// copy, when present, is printed immediately; the refreshed copy follows
// once the network round trip finishes.
func (a *App) List(ctx context.Context, kind string) error {
	if a.projectID == 0 {
		printlnFn("No project selected. Use: use <projectId>")
		return nil
	}

	switch kind {
	case "drawings":
		return listItems(ctx, a, kind, a.perms.Drawings, a.engine.FetchDrawings, renderDrawing)
	case "documents":
		return listItems(ctx, a, kind, a.perms.Documents, a.engine.FetchDocuments, renderDocument)
	case "rfis":
		return listItems(ctx, a, kind, a.perms.RFIs, a.engine.FetchRFIs, renderRFI)
	case "forms":
		return listItems(ctx, a, kind, a.perms.Forms, a.engine.FetchForms, renderForm)
	case "submissions":
		return listItems(ctx, a, kind, a.perms.Forms, a.engine.FetchFormSubmissions, renderSubmission)
	case "photos":
		return listItems(ctx, a, kind, a.perms.Photos, a.engine.FetchPhotos, renderPhoto)
	default:
		printlnFn("Unknown collection:", kind)
		return nil
	}
}

func listItems[T any](ctx context.Context, a *App, label string, allowed bool,
	fetch func(context.Context, int, bool, func([]T)) ([]T, sync.ServedFrom, error),
	render func(T) string,
) error {
	if !allowed {
		printlnFn(fmt.Sprintf("You do not have permission to view %s.", label))
		return nil
	}

	show := func(source string, items []T) {
		printlnFn(fmt.Sprintf("%d %s (%s)", len(items), label, source))
		for _, item := range items {
			printlnFn("  " + render(item))
		}
	}

	shownCached := false
	items, from, err := fetch(ctx, a.projectID, allowed, func(cached []T) {
		shownCached = true
		show("cached", cached)
	})
	if err != nil {
		printlnFn("Error:", describeFetchError(err))
		return err
	}
	if from == sync.ServedFromRemote || !shownCached {
		show(string(from), items)
	}
	return nil
}

// Open shows one drawing in detail, remembers it as the last viewed one,
// and records a "viewed" access event. Files of the latest revision that
// are not on disk yet are fetched on demand while connected, and each
// fetch is recorded as a "downloaded" access event.
func (a *App) Open(ctx context.Context, args []string) error {
	if a.projectID == 0 {
		printlnFn("No project selected. Use: use <projectId>")
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: open <drawingId>")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		printlnFn("Usage: open <drawingId>")
		return nil
	}

	drawings, _, err := a.engine.FetchDrawings(ctx, a.projectID, a.perms.Drawings, nil)
	if err != nil {
		printlnFn("Error:", describeFetchError(err))
		return err
	}
	drawing, found := lo.Find(drawings, func(d models.Drawing) bool { return d.ID == id })
	if !found {
		printlnFn(fmt.Sprintf("No drawing %d in project %d.", id, a.projectID))
		return nil
	}

	latest, ok := models.LatestRevision(drawing.Revisions)
	if !ok {
		printlnFn(fmt.Sprintf("%s  %s (no revisions)", drawing.Number, drawing.Title))
		return nil
	}
	printlnFn(fmt.Sprintf("%s  %s  rev %d%s", drawing.Number, drawing.Title, latest.Version, mark(drawing.AvailableOffline)))
	for _, f := range latest.Files {
		path, onDisk := a.engine.AttachmentPath(a.projectID, models.CategoryDrawings, f)
		if !onDisk && a.monitor.Online() {
			fetched, dlErr := a.engine.DownloadFile(ctx, a.projectID, models.CategoryDrawings, f)
			if dlErr != nil {
				a.log.Warn(ctx, "on-demand file download failed", "project_id", a.projectID, "file", f.Name, "error", dlErr)
			} else {
				path, onDisk = fetched, true
				a.recorder.Record(ctx, models.AccessEvent{ResourceID: id, Type: models.AccessDownloaded}, a.token)
			}
		}
		if onDisk {
			printlnFn(fmt.Sprintf("  %s -> %s", f.Name, path))
		} else {
			printlnFn(fmt.Sprintf("  %s (not downloaded)", f.Name))
		}
	}

	if err := a.prefs.SetLastViewedDrawing(a.projectID, id); err != nil {
		a.log.Warn(ctx, "saving last viewed drawing failed", "project_id", a.projectID, "error", err)
	}
	a.recorder.Record(ctx, models.AccessEvent{ResourceID: id, Type: models.AccessViewed}, a.token)
	return nil
}

func describeFetchError(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "session expired, log in again"
	case errors.Is(err, common.ErrForbidden):
		return "you no longer have access to this project"
	case errors.Is(err, sync.ErrOfflineDisabled):
		return "offline, and offline mode is not enabled for this project"
	case errors.Is(err, sync.ErrNeverCached):
		return "no offline copy yet, connect once to download it"
	default:
		return err.Error()
	}
}

func mark(availableOffline bool) string {
	if availableOffline {
		return "  [local]"
	}
	return ""
}

func renderDrawing(d models.Drawing) string {
	rev := "no revisions"
	if latest, ok := models.LatestRevision(d.Revisions); ok {
		rev = fmt.Sprintf("rev %d", latest.Version)
	}
	return fmt.Sprintf("#%d %s  %s (%s)%s", d.ID, d.Number, d.Title, rev, mark(d.AvailableOffline))
}

func renderDocument(d models.Document) string {
	folder := ""
	if d.Folder != "" {
		folder = " in " + d.Folder
	}
	return fmt.Sprintf("#%d %s%s%s", d.ID, d.Name, folder, mark(d.AvailableOffline))
}

func renderRFI(r models.RFI) string {
	return fmt.Sprintf("#%d RFI-%d  %s (%s)%s", r.ID, r.Number, r.Subject, r.Status, mark(r.AvailableOffline))
}

func renderForm(f models.Form) string {
	return fmt.Sprintf("#%d %s", f.ID, f.Title)
}

func renderSubmission(s models.FormSubmission) string {
	return fmt.Sprintf("#%d form %d submitted %s%s", s.ID, s.FormID, s.SubmittedAt.Format("2006-01-02"), mark(s.AvailableOffline))
}

func renderPhoto(p models.Photo) string {
	return fmt.Sprintf("#%d %s taken %s%s", p.ID, p.Caption, p.TakenAt.Format("2006-01-02"), mark(p.AvailableOffline))
}
