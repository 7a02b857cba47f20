package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildV1Database creates a database exactly as a v1 device left it: synced
// boolean, no client_id, no sync_status.
func buildV1Database(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE schema_version (version INTEGER NOT NULL)`)
	require.NoError(t, err)

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, migrateV1(tx))
	_, err = tx.Exec(`INSERT INTO schema_version (version) VALUES (1)`)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	created := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	for i, synced := range []int{1, 0, 0} {
		_, err = db.Exec(`
			INSERT INTO offline_cases (local_id, patient_id, hospital_id, disease_id, illness_date, synced, created_at)
			VALUES (?, 'p1', 10, 1, '2026-06-30', ?, ?)`,
			fmt.Sprintf("case-%d", i), synced, created)
		require.NoError(t, err)
	}
}

func TestMigrateV1ToV2Backfill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1.db")
	buildV1Database(t, path)

	s, err := Open(DefaultConfig(path))
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.db.Query(`SELECT local_id, client_id, sync_status FROM offline_cases ORDER BY local_id`)
	require.NoError(t, err)
	defer rows.Close()

	statuses := map[string]string{}
	clientIDs := map[string]string{}
	for rows.Next() {
		var id, clientID, status string
		require.NoError(t, rows.Scan(&id, &clientID, &status))
		statuses[id] = status
		clientIDs[id] = clientID
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, "synced", statuses["case-0"])
	assert.Equal(t, "pending", statuses["case-1"])
	assert.Equal(t, "pending", statuses["case-2"])

	seen := map[string]bool{}
	for id, clientID := range clientIDs {
		assert.Len(t, clientID, 36, "backfilled clientId for %s must be a uuid", id)
		assert.False(t, seen[clientID], "clientIds must be unique")
		seen[clientID] = true
	}
}

func TestMigrateReopenKeepsClientIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1.db")
	buildV1Database(t, path)

	s, err := Open(DefaultConfig(path))
	require.NoError(t, err)

	first := map[string]string{}
	rows, err := s.db.Query(`SELECT local_id, client_id FROM offline_cases`)
	require.NoError(t, err)
	for rows.Next() {
		var id, clientID string
		require.NoError(t, rows.Scan(&id, &clientID))
		first[id] = clientID
	}
	require.NoError(t, rows.Err())
	rows.Close()
	require.NoError(t, s.Close())

	s, err = Open(DefaultConfig(path))
	require.NoError(t, err)
	defer s.Close()

	rows, err = s.db.Query(`SELECT local_id, client_id FROM offline_cases`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var id, clientID string
		require.NoError(t, rows.Scan(&id, &clientID))
		assert.Equal(t, first[id], clientID, "reopening must not regenerate clientIds")
	}
	require.NoError(t, rows.Err())
}

func TestMigrateFreshDatabaseAtLatestVersion(t *testing.T) {
	s := openTestStore(t)

	var version int
	row := s.db.QueryRow(`SELECT MAX(version) FROM schema_version`)
	require.NoError(t, row.Scan(&version))
	assert.Equal(t, migrations[len(migrations)-1].version, version)
}
