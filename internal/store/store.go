// Package store implements the local on-disk cache: per-project JSON
// snapshots of fetched collections, the binary attachment tree, and small
// global buckets (such as the queued access-log events).
//
// Layout:
//
//	<cacheDir>/<kind>_project_<projectID>.json   collection snapshots
//	<cacheDir>/<bucket>.json                     global buckets
//	<filesDir>/Project_<projectID>/<category>/<fileName>
//
// Writes are atomic from a reader's point of view (write-new-then-rename)
// and serialized per key, so a background refresh cannot interleave with a
// foreground save of the same snapshot. A missing snapshot is a cache miss,
// not an error.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lewisnorthcott/sitesinc-offline/internal/logging"
	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
)

type Store struct {
	cacheDir string
	filesDir string
	log      logging.Logger

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

// New creates both storage roots if needed. The roots must be durable
// application-support locations: offline data has to survive OS cache
// eviction and app upgrades.
func New(cacheDir, filesDir string, log logging.Logger) (*Store, error) {
	for _, dir := range []string{cacheDir, filesDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating storage root %s: %w", dir, err)
		}
	}
	return &Store{
		cacheDir: cacheDir,
		filesDir: filesDir,
		log:      log,
		keyLocks: make(map[string]*sync.Mutex),
	}, nil
}

// lockFor returns the write lock for one snapshot or bucket path.
func (s *Store) lockFor(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.keyLocks[path]
	if !ok {
		l = &sync.Mutex{}
		s.keyLocks[path] = l
	}
	return l
}

func (s *Store) snapshotPath(projectID int, kind models.CacheKind) string {
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s_project_%d.json", kind, projectID))
}

func (s *Store) bucketPath(name string) string {
	return filepath.Join(s.cacheDir, name+".json")
}

// Save replaces the snapshot for (projectID, kind) with the JSON encoding
// of v. The previous snapshot stays readable until the rename lands.
func (s *Store) Save(projectID int, kind models.CacheKind, v any) error {
	return s.writeJSON(s.snapshotPath(projectID, kind), v)
}

// Load decodes the snapshot for (projectID, kind) into out. A snapshot that
// was never written yields (false, nil): cache misses are an expected
// outcome, not a failure.
func (s *Store) Load(projectID int, kind models.CacheKind, out any) (bool, error) {
	return s.readJSON(s.snapshotPath(projectID, kind), out)
}

// SaveBucket replaces a global (project-independent) bucket, e.g. the
// access-log queue.
func (s *Store) SaveBucket(name string, v any) error {
	return s.writeJSON(s.bucketPath(name), v)
}

// LoadBucket decodes a global bucket into out; (false, nil) when absent.
func (s *Store) LoadBucket(name string, out any) (bool, error) {
	return s.readJSON(s.bucketPath(name), out)
}

func (s *Store) writeJSON(path string, v any) error {
	lock := s.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Store) readJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// ProjectDir is the root of a project's binary attachment tree.
func (s *Store) ProjectDir(projectID int) string {
	return filepath.Join(s.filesDir, fmt.Sprintf("Project_%d", projectID))
}

// AttachmentPath is the destination for one downloaded file. The file name
// is flattened with filepath.Base so server-supplied names cannot escape
// the project tree.
func (s *Store) AttachmentPath(projectID int, cat models.Category, fileName string) string {
	return filepath.Join(s.ProjectDir(projectID), string(cat), filepath.Base(fileName))
}

// EnsureCategoryDir creates the directory one category's files land in.
func (s *Store) EnsureCategoryDir(projectID int, cat models.Category) (string, error) {
	dir := filepath.Join(s.ProjectDir(projectID), string(cat))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}

// FileExists reports whether a previously downloaded attachment is still on
// disk. Directories do not count.
func (s *Store) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Purge removes the project's entire attachment tree and every cache
// snapshot belonging to it. Purging a project that has nothing on disk is
// a no-op success.
func (s *Store) Purge(projectID int) error {
	if err := os.RemoveAll(s.ProjectDir(projectID)); err != nil {
		return fmt.Errorf("removing project files: %w", err)
	}

	pattern := filepath.Join(s.cacheDir, fmt.Sprintf("*_project_%d.json", projectID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}
	for _, path := range matches {
		lock := s.lockFor(path)
		lock.Lock()
		err := os.Remove(path)
		lock.Unlock()
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing snapshot %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}
