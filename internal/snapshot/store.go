// Package snapshot persists the journey snapshot in a local SQLite database.
// One row, one reader at startup, one writer (the journey machine). A row
// that fails to decode is discarded silently so a corrupt snapshot can
// never block a fresh start.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"philomind/internal/analysis"
	"philomind/internal/logging"
)

// Snapshot is the persisted journey state.
type Snapshot struct {
	State   string           `json:"state"`
	Result  *analysis.Result `json:"result,omitempty"`
	Answers map[int]string   `json:"answers,omitempty"`
}

// Store is a SQLite-backed single-row snapshot store.
type Store struct {
	db     *sql.DB
	dbPath string
}

// snapshotKey is the fixed row key; the table is a one-entry KV so the
// schema can grow more keys later without migration.
const snapshotKey = "journey"

// NewStore opens (or creates) the database at path.
func NewStore(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewStore")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	store := &Store{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("snapshot store ready at %s", path)
	return store, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS journey_snapshot (
			key        TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Load reads the persisted snapshot. ok is false when no snapshot exists
// or the stored payload fails to decode; the corrupt row is deleted so the
// next Load starts clean.
func (s *Store) Load() (Snapshot, bool) {
	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM journey_snapshot WHERE key = ?", snapshotKey,
	).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.StoreDebug("snapshot load failed: %v", err)
		}
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		logging.StoreDebug("discarding corrupt snapshot: %v", err)
		_ = s.Clear()
		return Snapshot{}, false
	}
	return snap, true
}

// Save upserts the snapshot.
func (s *Store) Save(snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO journey_snapshot (key, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP`,
		snapshotKey, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	logging.StoreDebug("snapshot saved: state=%s", snap.State)
	return nil
}

// Clear deletes the persisted snapshot.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM journey_snapshot WHERE key = ?", snapshotKey)
	if err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
