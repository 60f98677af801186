// Package sync is the offline-first engine at the core of the client.
//
// # Overview
//
// The package provides:
//  1. Collection fetches (FetchDrawings, FetchDocuments, ...) that serve the
//     local cache immediately, refresh from the remote source when the
//     network allows, and fall back to cached data otherwise. Fresh remote
//     data always wins and is what gets persisted.
//  2. DownloadAll, which pulls a project's metadata plus every referenced
//     binary attachment onto disk so the project stays usable with no
//     connectivity, reporting fractional progress through a Tracker.
//  3. The per-project offline-mode flag, including the purge of all local
//     data when a project is switched back to online-only.
//
// # Error Handling
//
// Auth failures (common.ErrTokenExpired, common.ErrForbidden) are hard
// stops: the engine never retries them and never falls back to the cache,
// the caller must re-authenticate. Every other remote failure degrades to
// cached data when any exists; when none does, the returned error
// distinguishes a project that was never downloaded (ErrNeverCached) from
// one whose offline mode is simply off (ErrOfflineDisabled).
//
// Download failures carry their origin: MetadataError for a failed
// collection fetch, FileDownloadError for a failed binary, SetupError for
// local I/O. Drawings and RFIs are must-have categories, a single failed
// file aborts the run; documents, form attachments and photos are best
// effort and are skipped.
package sync
