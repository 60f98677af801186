package sync

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/lewisnorthcott/sitesinc-offline/internal/common"
	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
	"github.com/lewisnorthcott/sitesinc-offline/internal/netx"
)

// DownloadAll fetches a project's metadata and every referenced binary so
// the project stays usable offline. Progress is reported through the
// Tracker. At most one run per project is allowed at a time; a second call
// returns ErrDownloadInFlight.
//
// Metadata snapshots and path maps are persisted only when the whole run
// succeeds. On failure or cancellation already-downloaded files stay on
// disk but the cache is left as it was; the caller decides whether to
// revert the project's offline flag (which purges).
func (e *Engine) DownloadAll(ctx context.Context, projectID int, perms models.Permissions) error {
	if !e.acquire(projectID) {
		return ErrDownloadInFlight
	}
	defer e.release(projectID)

	e.tracker.begin(projectID)
	err := e.runDownload(ctx, projectID, perms)
	e.tracker.finish(projectID, err != nil)

	if err != nil {
		e.log.Error(ctx, "project download failed", "project_id", projectID, "error", err)
		return err
	}
	e.log.Info(ctx, "project download finished", "project_id", projectID)
	return nil
}

func (e *Engine) acquire(projectID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[projectID] {
		return false
	}
	e.inFlight[projectID] = true
	return true
}

func (e *Engine) release(projectID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, projectID)
}

func (e *Engine) runDownload(ctx context.Context, projectID int, perms models.Permissions) error {
	if !e.net.Online() {
		return ErrNetworkUnavailable
	}

	snap, err := e.fetchSnapshot(ctx, projectID, perms)
	if err != nil {
		return err
	}

	jobs := buildWorklist(snap)
	total := len(jobs)
	if total == 0 {
		// Nothing to transfer, but metadata caching must still happen.
		if err := e.persistSnapshot(projectID, perms, snap, nil, nil); err != nil {
			return err
		}
		e.tracker.setProgress(projectID, 1)
		return nil
	}

	attachmentPaths := make(map[string]string)
	photoPaths := make(map[string]string)
	completed := 0
	presignBroken := false

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}

		path, err := e.downloadOne(ctx, projectID, job, &presignBroken)

		// Every attempt advances the fraction, success or not, so observers
		// see steady forward motion.
		completed++
		e.tracker.setProgress(projectID, float64(completed)/float64(total))

		if err != nil {
			var setupErr *SetupError
			if errors.As(err, &setupErr) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if job.Category.MustHave() {
				return &FileDownloadError{Category: job.Category, FileName: job.Ref.Name, Err: err}
			}
			e.log.Warn(ctx, "skipping file", "project_id", projectID,
				"category", job.Category, "file", job.Ref.Name, "error", err)
			continue
		}

		if path != "" {
			key := strconv.Itoa(job.Ref.ID)
			if job.Category == models.CategoryPhotos {
				photoPaths[key] = path
			} else {
				attachmentPaths[key] = path
			}
		}
	}

	return e.persistSnapshot(projectID, perms, snap, attachmentPaths, photoPaths)
}

// fetchSnapshot pulls the metadata for every permitted kind concurrently
// and fails on the first required-kind error. Documents are the one
// tolerated exception: a failure there means zero documents, not an abort.
func (e *Engine) fetchSnapshot(ctx context.Context, projectID int, perms models.Permissions) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	if perms.Drawings {
		g.Go(func() error {
			ds, err := e.source.ListDrawings(gctx, projectID)
			if err != nil {
				return &MetadataError{Kind: models.KindDrawings, Err: err}
			}
			snap.Drawings = ds
			return nil
		})
	}
	if perms.RFIs {
		g.Go(func() error {
			rs, err := e.source.ListRFIs(gctx, projectID)
			if err != nil {
				return &MetadataError{Kind: models.KindRFIs, Err: err}
			}
			snap.RFIs = rs
			return nil
		})
	}
	if perms.Forms {
		g.Go(func() error {
			fs, err := e.source.ListForms(gctx, projectID)
			if err != nil {
				return &MetadataError{Kind: models.KindForms, Err: err}
			}
			snap.Forms = fs
			return nil
		})
		g.Go(func() error {
			subs, err := e.source.ListFormSubmissions(gctx, projectID)
			if err != nil {
				return &MetadataError{Kind: models.KindFormSubmissions, Err: err}
			}
			snap.FormSubmissions = subs
			return nil
		})
	}
	if perms.Photos {
		g.Go(func() error {
			ps, err := e.source.ListPhotos(gctx, projectID)
			if err != nil {
				return &MetadataError{Kind: models.KindPhotos, Err: err}
			}
			snap.Photos = ps
			return nil
		})
	}
	if perms.Documents {
		g.Go(func() error {
			docs, err := e.source.ListDocuments(gctx, projectID)
			if err != nil {
				e.log.Warn(gctx, "document metadata fetch failed, continuing without documents",
					"project_id", projectID, "error", err)
				return nil
			}
			snap.Documents = docs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// downloadOne resolves a job's URL (direct, or via presign exchange) and
// streams it to disk. A job with no resolvable URL is skipped: ("", nil).
func (e *Engine) downloadOne(ctx context.Context, projectID int, job fileJob, presignBroken *bool) (string, error) {
	// Server metadata is untrusted input for the filesystem; refs that fail
	// the field constraints never reach the presign exchange or the disk.
	if err := e.validate.Struct(job); err != nil {
		return "", err
	}

	url := job.Ref.DownloadURL
	if url == "" && job.Ref.StorageKey != "" && !*presignBroken {
		u, err := e.source.PresignDownload(ctx, job.Ref.StorageKey)
		switch {
		case errors.Is(err, common.ErrDecoding):
			// The server build does not speak presign; asking again for
			// every remaining keyed file would just repeat the answer.
			*presignBroken = true
			e.log.Warn(ctx, "presign unsupported, skipping remaining keyed files", "project_id", projectID, "error", err)
		case err != nil:
			return "", err
		default:
			url = u
		}
	}
	if url == "" {
		e.log.Debug(ctx, "no download url, skipping", "category", job.Category, "file", job.Ref.Name)
		return "", nil
	}

	if _, err := e.store.EnsureCategoryDir(projectID, job.Category); err != nil {
		return "", &SetupError{Err: err}
	}
	dest := e.store.AttachmentPath(projectID, job.Category, job.Ref.Name)
	if _, err := netx.DownloadToFile(ctx, e.files, url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (e *Engine) persistSnapshot(projectID int, perms models.Permissions, snap *snapshot, attachmentPaths, photoPaths map[string]string) error {
	if attachmentPaths == nil {
		attachmentPaths = map[string]string{}
	}
	if photoPaths == nil {
		photoPaths = map[string]string{}
	}

	saves := []struct {
		kind    models.CacheKind
		v       any
		granted bool
	}{
		{models.KindDrawings, snap.Drawings, perms.Drawings},
		{models.KindRFIs, snap.RFIs, perms.RFIs},
		{models.KindDocuments, snap.Documents, perms.Documents},
		{models.KindForms, snap.Forms, perms.Forms},
		{models.KindFormSubmissions, snap.FormSubmissions, perms.Forms},
		{models.KindPhotos, snap.Photos, perms.Photos},
		{models.KindAttachmentPaths, attachmentPaths, true},
		{models.KindPhotoPaths, photoPaths, perms.Photos},
	}
	for _, s := range saves {
		if !s.granted {
			continue
		}
		if err := e.store.Save(projectID, s.kind, s.v); err != nil {
			return &SetupError{Err: err}
		}
	}
	return nil
}

// DownloadFile fetches a single attachment right away, outside any bulk
// run. It serves on-demand viewing of files that are not local yet. A ref
// with no resolvable URL returns common.ErrNotFound.
func (e *Engine) DownloadFile(ctx context.Context, projectID int, cat models.Category, ref models.FileRef) (string, error) {
	if !e.net.Online() {
		return "", ErrNetworkUnavailable
	}
	presignBroken := false
	dest, err := e.downloadOne(ctx, projectID, fileJob{Category: cat, Ref: ref}, &presignBroken)
	if err != nil {
		return "", err
	}
	if dest == "" {
		return "", common.ErrNotFound
	}
	return dest, nil
}

// SetOfflineMode flips a project's offline availability flag. Switching it
// off purges the project's snapshots and attachment files.
func (e *Engine) SetOfflineMode(ctx context.Context, projectID int, enabled bool) error {
	was, err := e.prefs.OfflineMode(projectID)
	if err != nil {
		return err
	}
	if err := e.prefs.SetOfflineMode(projectID, enabled); err != nil {
		return err
	}
	if was && !enabled {
		if err := e.store.Purge(projectID); err != nil {
			return err
		}
		e.log.Info(ctx, "offline data purged", "project_id", projectID)
	}
	return nil
}

// OfflineMode reports the persisted flag for a project.
func (e *Engine) OfflineMode(projectID int) (bool, error) {
	return e.prefs.OfflineMode(projectID)
}
