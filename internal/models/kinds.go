// Package models defines the domain records handled by the sync engine:
// project collections fetched from the backend, their attachment references,
// and the cache bucket names they are stored under.
package models

// CacheKind names a per-project snapshot bucket in the local store.
type CacheKind string

const (
	KindDrawings        CacheKind = "drawings"
	KindDocuments       CacheKind = "documents"
	KindRFIs            CacheKind = "rfis"
	KindForms           CacheKind = "forms"
	KindFormSubmissions CacheKind = "form_submissions"
	KindPhotos          CacheKind = "photos"

	// Path-map buckets record where downloaded binaries live on disk.
	KindAttachmentPaths CacheKind = "attachment_path_map"
	KindPhotoPaths      CacheKind = "photo_path_map"
)

// Category names a subdirectory of a project's attachment tree. It also
// decides the failure policy during a full download: drawings and RFIs are
// must-have, everything else is best-effort.
type Category string

const (
	CategoryDrawings        Category = "drawings"
	CategoryRFIs            Category = "rfis"
	CategoryDocuments       Category = "documents"
	CategoryFormAttachments Category = "form_attachments"
	CategoryPhotos          Category = "photos"
)

// MustHave reports whether a single failed download in this category aborts
// a full project download. Drawings and RFIs are safety/compliance critical;
// the rest only reduce completeness.
func (c Category) MustHave() bool {
	return c == CategoryDrawings || c == CategoryRFIs
}
