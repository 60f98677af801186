package sync

import (
	"context"
	"errors"
	"net/http"
	stdsync "sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/lewisnorthcott/sitesinc-offline/internal/common"
	"github.com/lewisnorthcott/sitesinc-offline/internal/logging"
	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
	"github.com/lewisnorthcott/sitesinc-offline/internal/netx"
	"github.com/lewisnorthcott/sitesinc-offline/internal/prefs"
	"github.com/lewisnorthcott/sitesinc-offline/internal/remote"
	"github.com/lewisnorthcott/sitesinc-offline/internal/store"
)

// ServedFrom says where a fetch result came from.
type ServedFrom string

const (
	ServedFromNone   ServedFrom = "none"
	ServedFromCache  ServedFrom = "cache"
	ServedFromRemote ServedFrom = "remote"
)

// Engine orchestrates offline-first reads and full project downloads. All
// collaborators are injected; the engine owns no global state, so tests and
// multi-account setups can run independent instances.
type Engine struct {
	store    *store.Store
	prefs    *prefs.Store
	source   remote.Source
	net      netx.Checker
	tracker  *Tracker
	files    *http.Client
	validate *validator.Validate
	log      logging.Logger

	mu       stdsync.Mutex
	inFlight map[int]bool
}

// New wires an engine. files is the plain HTTP client used for presigned
// attachment URLs (no auth headers, the signature is in the URL).
func New(st *store.Store, pr *prefs.Store, src remote.Source, net netx.Checker, tracker *Tracker, files *http.Client, log logging.Logger) *Engine {
	if tracker == nil {
		tracker = NewTracker()
	}
	if files == nil {
		files = &http.Client{}
	}
	return &Engine{
		store:    st,
		prefs:    pr,
		source:   src,
		net:      net,
		tracker:  tracker,
		files:    files,
		validate: validator.New(),
		log:      log,
		inFlight: make(map[int]bool),
	}
}

// Tracker exposes the progress tracker for observers.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// AttachmentPath reports where ref's file lives under the local attachment
// tree and whether it has been downloaded.
func (e *Engine) AttachmentPath(projectID int, cat models.Category, ref models.FileRef) (string, bool) {
	if ref.Name == "" {
		return "", false
	}
	path := e.store.AttachmentPath(projectID, cat, ref.Name)
	return path, e.store.FileExists(path)
}

// fetchCollection is the shared offline-first read path:
//
//  1. no permission: empty result, no I/O
//  2. cached snapshot, when present and non-empty, goes to onCached right
//     away so callers can show something while the network round trip runs
//  3. when reachable, the remote result wins, is persisted, and is returned
//  4. auth failures stop hard; everything else falls back to the cache
//  5. with nothing cached either, the error says which user action helps
func fetchCollection[T any](
	ctx context.Context,
	e *Engine,
	projectID int,
	kind models.CacheKind,
	hasPermission bool,
	list func(context.Context, int) ([]T, error),
	annotate func([]T),
	onCached func([]T),
) ([]T, ServedFrom, error) {
	if !hasPermission {
		return nil, ServedFromNone, nil
	}

	var cached []T
	cacheOK, err := e.store.Load(projectID, kind, &cached)
	if err != nil {
		// A corrupt snapshot degrades to a miss; the next refresh rewrites it.
		e.log.Warn(ctx, "cache read failed", "project_id", projectID, "kind", kind, "error", err)
		cacheOK = false
	}
	hasCached := cacheOK && len(cached) > 0
	if hasCached {
		annotate(cached)
		if onCached != nil {
			onCached(cached)
		}
	}

	var remoteErr error
	if e.net.Online() {
		fresh, err := list(ctx, projectID)
		switch {
		case err == nil:
			if saveErr := e.store.Save(projectID, kind, fresh); saveErr != nil {
				e.log.Error(ctx, "cache write failed", "project_id", projectID, "kind", kind, "error", saveErr)
			}
			annotate(fresh)
			e.log.Debug(ctx, "collection refreshed", "project_id", projectID, "kind", kind, "count", len(fresh))
			return fresh, ServedFromRemote, nil

		case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrForbidden):
			// Hard stop: the caller must re-authenticate, stale data would
			// only hide that.
			return nil, ServedFromNone, err

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, ServedFromNone, err

		default:
			remoteErr = err
			e.log.Warn(ctx, "remote fetch failed, serving cache", "project_id", projectID, "kind", kind, "error", err)
		}
	}

	if hasCached {
		return cached, ServedFromCache, nil
	}
	return nil, ServedFromNone, e.emptyFallbackError(ctx, projectID, remoteErr)
}

// emptyFallbackError picks the error for "remote unavailable and nothing
// cached". The three cases need different user actions: retry, enable
// offline mode, or go online and download.
func (e *Engine) emptyFallbackError(ctx context.Context, projectID int, remoteErr error) error {
	if remoteErr != nil && !errors.Is(remoteErr, common.ErrNotConnected) {
		return remoteErr
	}
	enabled, err := e.prefs.OfflineMode(projectID)
	if err != nil {
		e.log.Warn(ctx, "offline flag read failed", "project_id", projectID, "error", err)
	}
	if !enabled {
		return ErrOfflineDisabled
	}
	return ErrNeverCached
}

func (e *Engine) FetchDrawings(ctx context.Context, projectID int, hasPermission bool, onCached func([]models.Drawing)) ([]models.Drawing, ServedFrom, error) {
	return fetchCollection(ctx, e, projectID, models.KindDrawings, hasPermission, e.source.ListDrawings,
		func(ds []models.Drawing) { e.annotateDrawings(projectID, ds) }, onCached)
}

func (e *Engine) FetchDocuments(ctx context.Context, projectID int, hasPermission bool, onCached func([]models.Document)) ([]models.Document, ServedFrom, error) {
	return fetchCollection(ctx, e, projectID, models.KindDocuments, hasPermission, e.source.ListDocuments,
		func(ds []models.Document) { e.annotateDocuments(projectID, ds) }, onCached)
}

func (e *Engine) FetchRFIs(ctx context.Context, projectID int, hasPermission bool, onCached func([]models.RFI)) ([]models.RFI, ServedFrom, error) {
	return fetchCollection(ctx, e, projectID, models.KindRFIs, hasPermission, e.source.ListRFIs,
		func(rs []models.RFI) { e.annotateRFIs(projectID, rs) }, onCached)
}

func (e *Engine) FetchForms(ctx context.Context, projectID int, hasPermission bool, onCached func([]models.Form)) ([]models.Form, ServedFrom, error) {
	return fetchCollection(ctx, e, projectID, models.KindForms, hasPermission, e.source.ListForms,
		func([]models.Form) {}, onCached)
}

func (e *Engine) FetchFormSubmissions(ctx context.Context, projectID int, hasPermission bool, onCached func([]models.FormSubmission)) ([]models.FormSubmission, ServedFrom, error) {
	return fetchCollection(ctx, e, projectID, models.KindFormSubmissions, hasPermission, e.source.ListFormSubmissions,
		func(fs []models.FormSubmission) { e.annotateFormSubmissions(projectID, fs) }, onCached)
}

func (e *Engine) FetchPhotos(ctx context.Context, projectID int, hasPermission bool, onCached func([]models.Photo)) ([]models.Photo, ServedFrom, error) {
	return fetchCollection(ctx, e, projectID, models.KindPhotos, hasPermission, e.source.ListPhotos,
		func(ps []models.Photo) { e.annotatePhotos(projectID, ps) }, onCached)
}

// projectsBucket holds the account-wide project list; it is not tied to a
// single project, so it lives in a named bucket rather than a snapshot.
const projectsBucket = "projects"

// FetchProjects lists the projects the account can open, with the same
// offline-first behavior as the per-project fetches. The project list has
// no offline-mode flag, so with nothing cached the fallback error is
// always ErrNeverCached.
func (e *Engine) FetchProjects(ctx context.Context, onCached func([]models.Project)) ([]models.Project, ServedFrom, error) {
	var cached []models.Project
	cacheOK, err := e.store.LoadBucket(projectsBucket, &cached)
	if err != nil {
		e.log.Warn(ctx, "project list cache read failed", "error", err)
		cacheOK = false
	}
	hasCached := cacheOK && len(cached) > 0
	if hasCached && onCached != nil {
		onCached(cached)
	}

	var remoteErr error
	if e.net.Online() {
		fresh, err := e.source.ListProjects(ctx)
		switch {
		case err == nil:
			if saveErr := e.store.SaveBucket(projectsBucket, fresh); saveErr != nil {
				e.log.Error(ctx, "project list cache write failed", "error", saveErr)
			}
			return fresh, ServedFromRemote, nil

		case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrForbidden):
			return nil, ServedFromNone, err

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, ServedFromNone, err

		default:
			remoteErr = err
			e.log.Warn(ctx, "project list fetch failed, serving cache", "error", err)
		}
	}

	if hasCached {
		return cached, ServedFromCache, nil
	}
	if remoteErr != nil && !errors.Is(remoteErr, common.ErrNotConnected) {
		return nil, ServedFromNone, remoteErr
	}
	return nil, ServedFromNone, ErrNeverCached
}

// annotateDrawings marks a drawing offline-available only when every PDF
// sheet across its revisions is on disk; a partially downloaded drawing
// counts as not available.
func (e *Engine) annotateDrawings(projectID int, ds []models.Drawing) {
	for i := range ds {
		ds[i].AvailableOffline = e.allOnDisk(projectID, models.CategoryDrawings, ds[i].PDFFiles())
	}
}

func (e *Engine) annotateRFIs(projectID int, rs []models.RFI) {
	for i := range rs {
		rs[i].AvailableOffline = e.allOnDisk(projectID, models.CategoryRFIs, rs[i].PDFFiles())
	}
}

func (e *Engine) annotateDocuments(projectID int, ds []models.Document) {
	for i := range ds {
		ds[i].AvailableOffline = e.onDisk(projectID, models.CategoryDocuments, ds[i].File)
	}
}

func (e *Engine) annotateFormSubmissions(projectID int, fs []models.FormSubmission) {
	for i := range fs {
		fs[i].AvailableOffline = e.allOnDisk(projectID, models.CategoryFormAttachments, fs[i].Attachments)
	}
}

func (e *Engine) annotatePhotos(projectID int, ps []models.Photo) {
	for i := range ps {
		ps[i].AvailableOffline = e.onDisk(projectID, models.CategoryPhotos, ps[i].File)
	}
}

func (e *Engine) allOnDisk(projectID int, cat models.Category, refs []models.FileRef) bool {
	return lo.EveryBy(refs, func(r models.FileRef) bool {
		return e.onDisk(projectID, cat, r)
	})
}

func (e *Engine) onDisk(projectID int, cat models.Category, r models.FileRef) bool {
	return r.Name != "" && e.store.FileExists(e.store.AttachmentPath(projectID, cat, r.Name))
}
