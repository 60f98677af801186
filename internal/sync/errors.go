package sync

import (
	"errors"
	"fmt"

	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
)

var (
	// ErrNetworkUnavailable rejects a full download started while offline.
	ErrNetworkUnavailable = errors.New("cannot download while offline")

	// ErrDownloadInFlight rejects a full download for a project that already
	// has one running.
	ErrDownloadInFlight = errors.New("a download for this project is already in progress")

	// ErrNeverCached means there is no cached copy to fall back to: the
	// project was never downloaded on this device.
	ErrNeverCached = errors.New("no offline copy exists yet")

	// ErrOfflineDisabled means there is no cached copy because the project
	// was never opted into offline availability.
	ErrOfflineDisabled = errors.New("offline mode is not enabled for this project")
)

// MetadataError reports a failed collection fetch during a full download.
type MetadataError struct {
	Kind models.CacheKind
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("fetching %s metadata: %v", e.Kind, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// FileDownloadError reports a must-have file that could not be downloaded.
type FileDownloadError struct {
	Category models.Category
	FileName string
	Err      error
}

func (e *FileDownloadError) Error() string {
	return fmt.Sprintf("downloading %s file %q: %v", e.Category, e.FileName, e.Err)
}

func (e *FileDownloadError) Unwrap() error { return e.Err }

// SetupError reports local I/O trouble (directory creation, snapshot
// persistence) that aborted a download run.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("preparing local storage: %v", e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }
