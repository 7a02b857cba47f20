package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Schema migrations run in order inside their own transactions; the applied
// version is recorded in the same transaction so each migration executes
// exactly once per database.

type migration struct {
	version int
	apply   func(tx *sql.Tx) error
}

var migrations = []migration{
	{version: 1, apply: migrateV1},
	{version: 2, apply: migrateV2},
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}

	var current int
	row := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&current); err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(m); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.apply(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
		return err
	}

	return tx.Commit()
}

// migrateV1 is the initial device schema: queued patients and cases tracked
// with a synced boolean, plus the reference-data mirror tables.
func migrateV1(tx *sql.Tx) error {
	schema := `
		CREATE TABLE IF NOT EXISTS offline_patients (
			local_id       TEXT PRIMARY KEY,
			id_card        TEXT,
			prefix         TEXT,
			first_name     TEXT NOT NULL,
			last_name      TEXT NOT NULL,
			gender         TEXT NOT NULL,
			birth_date     TEXT,
			nationality    TEXT,
			marital_status TEXT,
			occupation     TEXT,
			phone          TEXT,
			address_no     TEXT,
			moo            TEXT,
			road           TEXT,
			province_id    INTEGER,
			amphoe_id      INTEGER,
			tambon_id      INTEGER,
			synced         INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS offline_cases (
			local_id          TEXT PRIMARY KEY,
			patient_id        TEXT NOT NULL,
			hospital_id       INTEGER NOT NULL,
			disease_id        INTEGER NOT NULL,
			illness_date      TEXT,
			treat_date        TEXT,
			diagnosis_date    TEXT,
			patient_type      TEXT,
			condition         TEXT,
			death_date        TEXT,
			cause_of_death    TEXT,
			age_years         INTEGER NOT NULL DEFAULT 0,
			sick_address_no   TEXT,
			sick_moo          TEXT,
			sick_road         TEXT,
			sick_province_id  INTEGER,
			sick_amphoe_id    INTEGER,
			sick_tambon_id    INTEGER,
			reporter_name     TEXT,
			remark            TEXT,
			treating_hospital TEXT,
			lab_result1       TEXT,
			lab_result2       TEXT,
			synced            INTEGER NOT NULL DEFAULT 0,
			created_at        TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS master_data (
			id       INTEGER PRIMARY KEY,
			category TEXT NOT NULL,
			value    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS diseases (
			id           INTEGER PRIMARY KEY,
			code         TEXT NOT NULL,
			name_th      TEXT NOT NULL,
			name_en      TEXT,
			abbreviation TEXT,
			is_active    INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS hospitals (
			id        INTEGER PRIMARY KEY,
			name      TEXT NOT NULL,
			code9     TEXT,
			code9_new TEXT,
			code5     TEXT,
			type      TEXT
		);

		CREATE TABLE IF NOT EXISTS provinces (
			id      INTEGER PRIMARY KEY,
			code    TEXT NOT NULL,
			name_th TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS amphoes (
			id          INTEGER PRIMARY KEY,
			code        TEXT NOT NULL,
			name_th     TEXT NOT NULL,
			province_id INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tambons (
			id        INTEGER PRIMARY KEY,
			code      TEXT NOT NULL,
			name_th   TEXT NOT NULL,
			amphoe_id INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_offline_cases_patient ON offline_cases(patient_id);
		CREATE INDEX IF NOT EXISTS idx_amphoes_province ON amphoes(province_id);
		CREATE INDEX IF NOT EXISTS idx_tambons_amphoe ON tambons(amphoe_id);
	`
	_, err := tx.Exec(schema)
	return err
}

// migrateV2 replaces the synced boolean on cases with the explicit sync
// lifecycle and adds the clientId idempotency token. The backfill is
// deterministic and guarded: a prior true maps to the terminal state, false
// or absent maps to pending, and a clientId is generated only where one is
// missing, so re-applying never regenerates ids.
func migrateV2(tx *sql.Tx) error {
	alters := []string{
		`ALTER TABLE offline_cases ADD COLUMN client_id TEXT`,
		`ALTER TABLE offline_cases ADD COLUMN sync_status TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE offline_cases ADD COLUMN updated_at TEXT`,
	}
	for _, stmt := range alters {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`
		UPDATE offline_cases
		SET sync_status = CASE WHEN synced = 1 THEN 'synced' ELSE 'pending' END
		WHERE sync_status = ''
	`); err != nil {
		return err
	}

	rows, err := tx.Query(`SELECT local_id FROM offline_cases WHERE client_id IS NULL OR client_id = ''`)
	if err != nil {
		return err
	}
	var missing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		missing = append(missing, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range missing {
		if _, err := tx.Exec(
			`UPDATE offline_cases SET client_id = ? WHERE local_id = ? AND (client_id IS NULL OR client_id = '')`,
			uuid.NewString(), id,
		); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_offline_cases_client ON offline_cases(client_id)`)
	return err
}
