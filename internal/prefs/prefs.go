// Package prefs is the small persistent preference store: per-project
// offline-mode flags, the last drawing a user viewed, and the stable client
// instance id sent with every API request. It is a thin layer over Badger;
// anything bulky (collection snapshots, downloaded files) belongs to the
// store package instead.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/lewisnorthcott/sitesinc-offline/internal/logging"
)

type Store struct {
	db  *badger.DB
	log logging.Logger
}

// Open opens (or creates) the preference database at dir.
func Open(dir string, log logging.Logger) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("opening preference db: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// NewWithDB wraps an already open database. The caller keeps ownership of db.
func NewWithDB(db *badger.DB, log logging.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func offlineModeKey(projectID int) []byte {
	return []byte(fmt.Sprintf("offlineMode_%d", projectID))
}

func lastViewedKey(projectID int) []byte {
	return []byte(fmt.Sprintf("lastViewedDrawing_%d", projectID))
}

var instanceIDKey = []byte("clientInstanceId")

func (s *Store) get(key []byte) (string, bool, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			value = string(v)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(key []byte, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(value))
	})
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

// OfflineMode reports whether a project is kept available offline. Projects
// never toggled default to false.
func (s *Store) OfflineMode(projectID int) (bool, error) {
	v, ok, err := s.get(offlineModeKey(projectID))
	if err != nil || !ok {
		return false, err
	}
	return v == "1", nil
}

func (s *Store) SetOfflineMode(projectID int, on bool) error {
	v := "0"
	if on {
		v = "1"
	}
	return s.set(offlineModeKey(projectID), v)
}

// LastViewedDrawing returns the drawing the user most recently opened in a
// project, used to restore their place. ok is false when nothing was viewed.
func (s *Store) LastViewedDrawing(projectID int) (drawingID int, ok bool, err error) {
	v, ok, err := s.get(lastViewedKey(projectID))
	if err != nil || !ok {
		return 0, false, err
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("decoding last viewed drawing: %w", err)
	}
	return id, true, nil
}

func (s *Store) SetLastViewedDrawing(projectID, drawingID int) error {
	return s.set(lastViewedKey(projectID), strconv.Itoa(drawingID))
}

// InstanceID returns the stable identifier for this installation, minting
// and persisting one on first use.
func (s *Store) InstanceID() (string, error) {
	v, ok, err := s.get(instanceIDKey)
	if err != nil {
		return "", err
	}
	if ok {
		return v, nil
	}
	id := uuid.NewString()
	if err := s.set(instanceIDKey, id); err != nil {
		return "", err
	}
	s.log.Info(context.Background(), "minted client instance id", "instance_id", id)
	return id, nil
}
