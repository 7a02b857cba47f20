// Package store is the per-device durable store: queued case and patient
// records pending upload, plus read-only mirrors of the reference tables for
// offline form population. It survives process restarts; records leave the
// queue only when the server has confirmed them.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Config configures the embedded SQLite database.
type Config struct {
	// Path to the database file.
	Path string

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, etc.)
	JournalMode string

	// Synchronous sets the synchronous flag (OFF, NORMAL, FULL, EXTRA)
	Synchronous string

	// BusyTimeout is the timeout for acquiring locks in milliseconds
	BusyTimeout int
}

// DefaultConfig returns the default device-store configuration.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		JournalMode: "WAL",
		Synchronous: "NORMAL",
		BusyTimeout: 5000,
	}
}

// Store is the local durable store. It is owned by a single device process;
// only the sync engine transitions record statuses.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store and applies any outstanding
// schema migrations.
func Open(config Config) (*Store, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if config.JournalMode == "" {
		config.JournalMode = "WAL"
	}
	if config.Synchronous == "" {
		config.Synchronous = "NORMAL"
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5000
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(%s)&_pragma=synchronous(%s)&_pragma=busy_timeout(%d)",
		config.Path, config.JournalMode, config.Synchronous, config.BusyTimeout)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open device store: %w", err)
	}

	// Single writer; concurrent connections only invite SQLITE_BUSY here.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate device store: %w", err)
	}

	// A crash while an upload was in flight leaves its record in syncing,
	// which the pending list never revisits. Nothing else writes between
	// process runs, so any syncing record at open time is orphaned.
	if _, err := db.Exec(`UPDATE offline_cases SET sync_status = ? WHERE sync_status = ?`,
		string(StatusPending), string(StatusSyncing)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to recover in-flight records: %w", err)
	}

	return s, nil
}

// ClearAll wipes every queued record and cached reference table. Used on
// logout and device reset.
func (s *Store) ClearAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tables := []string{
		"offline_cases", "offline_patients",
		"master_data", "diseases", "hospitals", "provinces", "amphoes", "tambons",
	}
	for _, table := range tables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}
