package sync

import (
	"github.com/samber/lo"

	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
)

// snapshot is everything DownloadAll fetched for a project before the first
// file transfer starts. Kinds the caller has no permission for stay nil.
type snapshot struct {
	Drawings        []models.Drawing
	Documents       []models.Document
	RFIs            []models.RFI
	Forms           []models.Form
	FormSubmissions []models.FormSubmission
	Photos          []models.Photo
}

// fileJob is one unit of the download worklist.
type fileJob struct {
	Category models.Category `validate:"required"`
	Ref      models.FileRef
}

// buildWorklist flattens every binary referenced by the snapshot into a
// single ordered list. Drawings contribute the PDF sheets of all revisions;
// forms carry no binaries at all.
func buildWorklist(s *snapshot) []fileJob {
	jobs := lo.FlatMap(s.Drawings, func(d models.Drawing, _ int) []fileJob {
		return jobsFor(models.CategoryDrawings, d.PDFFiles())
	})
	jobs = append(jobs, lo.FlatMap(s.RFIs, func(r models.RFI, _ int) []fileJob {
		return jobsFor(models.CategoryRFIs, r.Attachments)
	})...)
	jobs = append(jobs, lo.FlatMap(s.Documents, func(d models.Document, _ int) []fileJob {
		return jobsFor(models.CategoryDocuments, []models.FileRef{d.File})
	})...)
	jobs = append(jobs, lo.FlatMap(s.FormSubmissions, func(fs models.FormSubmission, _ int) []fileJob {
		return jobsFor(models.CategoryFormAttachments, fs.Attachments)
	})...)
	jobs = append(jobs, lo.FlatMap(s.Photos, func(p models.Photo, _ int) []fileJob {
		return jobsFor(models.CategoryPhotos, []models.FileRef{p.File})
	})...)
	return jobs
}

// jobsFor drops refs without a file name: there is nothing to store them
// under, and the server occasionally returns placeholder rows.
func jobsFor(cat models.Category, refs []models.FileRef) []fileJob {
	named := lo.Filter(refs, func(r models.FileRef, _ int) bool { return r.Name != "" })
	return lo.Map(named, func(r models.FileRef, _ int) fileJob {
		return fileJob{Category: cat, Ref: r}
	})
}
