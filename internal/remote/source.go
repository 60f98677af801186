package remote

import (
	"context"

	"github.com/lewisnorthcott/sitesinc-offline/internal/auth"
	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
)

// Source is the API contract the sync engine depends on.
type Source interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListDrawings(ctx context.Context, projectID int) ([]models.Drawing, error)
	ListDocuments(ctx context.Context, projectID int) ([]models.Document, error)
	ListRFIs(ctx context.Context, projectID int) ([]models.RFI, error)
	ListForms(ctx context.Context, projectID int) ([]models.Form, error)
	ListFormSubmissions(ctx context.Context, projectID int) ([]models.FormSubmission, error)
	ListPhotos(ctx context.Context, projectID int) ([]models.Photo, error)

	// PresignDownload exchanges an opaque storage key for a short-lived
	// direct download URL.
	PresignDownload(ctx context.Context, storageKey string) (string, error)

	// RecordAccess posts one access-log event. The token is explicit rather
	// than the client's current one because queued events are replayed with
	// the token captured when the event happened.
	RecordAccess(ctx context.Context, event models.AccessEvent, token auth.Token) error
}
