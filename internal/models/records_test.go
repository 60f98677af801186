package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRef_IsPDF(t *testing.T) {
	tests := []struct {
		name string
		ref  FileRef
		want bool
	}{
		{"content type", FileRef{Name: "plan.bin", ContentType: "application/pdf"}, true},
		{"content type case", FileRef{Name: "plan.bin", ContentType: "Application/PDF"}, true},
		{"extension", FileRef{Name: "A-101.pdf"}, true},
		{"extension case", FileRef{Name: "A-101.PDF"}, true},
		{"image", FileRef{Name: "site.jpg", ContentType: "image/jpeg"}, false},
		{"no hints", FileRef{Name: "notes"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ref.IsPDF())
		})
	}
}

func TestLatestRevision(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
	}

	t.Run("empty", func(t *testing.T) {
		_, ok := LatestRevision(nil)
		assert.False(t, ok)
	})

	t.Run("highest version wins", func(t *testing.T) {
		revs := []Revision{
			{ID: 1, Version: 1, CreatedAt: day(1)},
			{ID: 3, Version: 3, CreatedAt: day(2)},
			{ID: 2, Version: 2, CreatedAt: day(9)},
		}
		latest, ok := LatestRevision(revs)
		require.True(t, ok)
		assert.Equal(t, 3, latest.ID)
	})

	t.Run("version tie broken by newest timestamp", func(t *testing.T) {
		revs := []Revision{
			{ID: 1, Version: 2, CreatedAt: day(1)},
			{ID: 2, Version: 2, CreatedAt: day(5)},
			{ID: 3, Version: 2, CreatedAt: day(3)},
		}
		latest, ok := LatestRevision(revs)
		require.True(t, ok)
		assert.Equal(t, 2, latest.ID)
	})
}

func TestDrawing_PDFFiles_SpansRevisions(t *testing.T) {
	d := Drawing{
		Revisions: []Revision{
			{Version: 1, Files: []FileRef{
				{ID: 1, Name: "a.pdf"},
				{ID: 2, Name: "a.dwg"},
			}},
			{Version: 2, Files: []FileRef{
				{ID: 3, Name: "b.pdf"},
			}},
		},
	}

	pdfs := d.PDFFiles()
	require.Len(t, pdfs, 2)
	assert.Equal(t, 1, pdfs[0].ID)
	assert.Equal(t, 3, pdfs[1].ID)

	assert.Len(t, d.AllFiles(), 3)
}

func TestCategory_MustHave(t *testing.T) {
	assert.True(t, CategoryDrawings.MustHave())
	assert.True(t, CategoryRFIs.MustHave())
	assert.False(t, CategoryDocuments.MustHave())
	assert.False(t, CategoryFormAttachments.MustHave())
	assert.False(t, CategoryPhotos.MustHave())
}
