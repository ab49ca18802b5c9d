package state

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/alexjbarnes/outline-sync/internal/models"
	bolt "go.etcd.io/bbolt"
)

const (
	// stateDirPerm is the permission mode for the state directory (~/.outline-sync/).
	stateDirPerm = fs.FileMode(0o700)

	// stateFilePerm is the permission mode for the state database file.
	stateFilePerm = fs.FileMode(0o600)

	// stateOpenTimeout is the maximum time to wait for the bolt database lock.
	stateOpenTimeout = 5 * time.Second
)

var (
	appBucket      = []byte("app")
	settingsBucket = []byte("settings")
	migrateBucket  = []byte("migrations")
	syncStatusKey  = []byte("sync_status")
	lastRunKey     = []byte("last_run")
)

// MigrationRecord describes the most recent bulk migration attempt. It is
// informational only: the sync status is the source of truth for whether
// remote sync is on.
type MigrationRecord struct {
	RunID     string    `json:"run_id"`
	Direction string    `json:"direction"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Error     string    `json:"error,omitempty"`
}

// State wraps a bbolt database for all persistent application state.
// It doubles as the settings store: the sync status is a single scalar
// in the app bucket and everything else is a free-form key/value pair
// in the settings bucket.
type State struct {
	db *bolt.DB
}

// Load opens the state database at ~/.outline-sync/state.db, creating it
// if it does not exist.
func Load() (*State, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}

	return LoadAt(path)
}

// LoadAt opens a state database at the given path, creating it if it
// does not exist. Useful for tests that need an isolated database.
func LoadAt(path string) (*State, error) {
	if err := os.MkdirAll(filepath.Dir(path), stateDirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := bolt.Open(path, stateFilePerm, &bolt.Options{Timeout: stateOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{appBucket, settingsBucket, migrateBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state db: %w", err)
	}

	return &State{db: db}, nil
}

// Close closes the database.
func (s *State) Close() error {
	return s.db.Close()
}

// SyncStatus returns the persisted sync status. A fresh database reports
// StatusNeverUsed.
func (s *State) SyncStatus() (models.SyncStatus, error) {
	status := models.StatusNeverUsed

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(appBucket).Get(syncStatusKey)
		if v == nil {
			return nil
		}

		parsed, err := models.ParseSyncStatus(string(v))
		if err != nil {
			return err
		}

		status = parsed

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("reading sync status: %w", err)
	}

	return status, nil
}

// SetSyncStatus persists the sync status. No transition rules are
// enforced here.
func (s *State) SetSyncStatus(status models.SyncStatus) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(appBucket).Put(syncStatusKey, []byte(status))
	})
}

// Setting returns the raw value stored under key, or nil if unset.
func (s *State) Setting(key string) ([]byte, error) {
	var out []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(settingsBucket).Get([]byte(key))
		if v != nil {
			// bbolt values are only valid for the life of the transaction.
			out = append([]byte(nil), v...)
		}

		return nil
	})

	return out, err
}

// SetSetting stores value under key. A nil value deletes the key.
func (s *State) SetSetting(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("setting key must not be empty")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(settingsBucket)
		if value == nil {
			return b.Delete([]byte(key))
		}

		return b.Put([]byte(key), value)
	})
}

// AllSettings returns a copy of every stored setting.
func (s *State) AllSettings() (map[string][]byte, error) {
	result := make(map[string][]byte)

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).ForEach(func(k, v []byte) error {
			result[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})

	return result, err
}

// LastMigration returns the most recent migration record, or nil if no
// migration has run.
func (s *State) LastMigration() (*MigrationRecord, error) {
	var rec *MigrationRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(migrateBucket).Get(lastRunKey)
		if v == nil {
			return nil
		}

		rec = &MigrationRecord{}

		return json.Unmarshal(v, rec)
	})

	return rec, err
}

// SetLastMigration persists the most recent migration record.
func (s *State) SetLastMigration(rec MigrationRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		return tx.Bucket(migrateBucket).Put(lastRunKey, data)
	})
}

// DefaultPath returns ~/.outline-sync/state.db.
func DefaultPath() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(dir, ".outline-sync", "state.db"), nil
}
