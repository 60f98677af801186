package models

import (
	"strings"
	"time"
)

// Project is one construction project the user can open.
type Project struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Reference string `json:"reference,omitempty"`
}

// FileRef points at a downloadable binary. Exactly one of DownloadURL or
// StorageKey is usually set: a direct (possibly short-lived) URL, or an
// opaque key the backend exchanges for a presigned URL. The validate tags
// guard the download path against server payloads the local filesystem
// cannot host (overlong names, unparsable URLs).
type FileRef struct {
	ID          int    `json:"id"`
	Name        string `json:"fileName" validate:"required,max=255"`
	DownloadURL string `json:"downloadUrl,omitempty" validate:"omitempty,url"`
	StorageKey  string `json:"storageKey,omitempty" validate:"max=1024"`
	ContentType string `json:"contentType,omitempty"`
}

// IsPDF reports whether the file is a PDF, by content type or extension.
// Offline availability of drawings and RFIs is judged on their PDFs only.
func (f FileRef) IsPDF() bool {
	if strings.EqualFold(f.ContentType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(f.Name), ".pdf")
}

// Revision is one issued version of a drawing.
type Revision struct {
	ID        int       `json:"id"`
	Version   int       `json:"versionNumber"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Files     []FileRef `json:"files"`
}

// Drawing is a sheet with one or more revisions. AvailableOffline is not an
// API field; the engine sets it after checking the local attachment tree.
type Drawing struct {
	ID               int        `json:"id"`
	Number           string     `json:"number"`
	Title            string     `json:"title"`
	Discipline       string     `json:"discipline,omitempty"`
	Revisions        []Revision `json:"revisions"`
	AvailableOffline bool       `json:"availableOffline"`
}

// PDFFiles returns every PDF attachment across all revisions.
func (d Drawing) PDFFiles() []FileRef {
	var out []FileRef
	for _, rev := range d.Revisions {
		for _, f := range rev.Files {
			if f.IsPDF() {
				out = append(out, f)
			}
		}
	}
	return out
}

// AllFiles returns every attachment across all revisions.
func (d Drawing) AllFiles() []FileRef {
	var out []FileRef
	for _, rev := range d.Revisions {
		out = append(out, rev.Files...)
	}
	return out
}

// LatestRevision returns the revision with the highest version number,
// breaking ties by the most recent CreatedAt. ok is false for drawings
// with no revisions.
func LatestRevision(revs []Revision) (latest Revision, ok bool) {
	for _, r := range revs {
		if !ok {
			latest, ok = r, true
			continue
		}
		if r.Version > latest.Version ||
			(r.Version == latest.Version && r.CreatedAt.After(latest.CreatedAt)) {
			latest = r
		}
	}
	return latest, ok
}

// RFI is a request-for-information thread with its attachments.
type RFI struct {
	ID               int       `json:"id"`
	Number           int       `json:"number"`
	Subject          string    `json:"subject"`
	Status           string    `json:"status,omitempty"`
	Attachments      []FileRef `json:"attachments"`
	AvailableOffline bool      `json:"availableOffline"`
}

// PDFFiles returns the RFI's PDF attachments.
func (r RFI) PDFFiles() []FileRef {
	var out []FileRef
	for _, f := range r.Attachments {
		if f.IsPDF() {
			out = append(out, f)
		}
	}
	return out
}

// Document is a project document with a single backing file.
type Document struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Folder           string  `json:"folder,omitempty"`
	File             FileRef `json:"file"`
	AvailableOffline bool    `json:"availableOffline"`
}

// Form is a template; it carries no binaries of its own.
type Form struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// FormSubmission is a filled-in form, possibly with photo or PDF attachments.
type FormSubmission struct {
	ID               int       `json:"id"`
	FormID           int       `json:"formId"`
	SubmittedAt      time.Time `json:"submittedAt"`
	Status           string    `json:"status,omitempty"`
	Attachments      []FileRef `json:"attachments"`
	AvailableOffline bool      `json:"availableOffline"`
}

// Photo is a site photo with a single image file.
type Photo struct {
	ID               int       `json:"id"`
	Caption          string    `json:"caption,omitempty"`
	TakenAt          time.Time `json:"takenAt"`
	File             FileRef   `json:"file"`
	AvailableOffline bool      `json:"availableOffline"`
}
