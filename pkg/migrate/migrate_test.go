package migrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"m/001_create_a.up.sql":   {Data: []byte("CREATE TABLE a (x INTEGER);")},
		"m/001_create_a.down.sql": {Data: []byte("DROP TABLE a;")},
		"m/002_create_b.up.sql":   {Data: []byte("CREATE TABLE b (y TEXT);")},
		"m/002_create_b.down.sql": {Data: []byte("DROP TABLE b;")},
		"m/README.md":             {Data: []byte("ignored")},
	}
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestGetMigrations(t *testing.T) {
	migs, err := NewFileProvider(testFS(), "m", "").GetMigrations()
	require.NoError(t, err)
	require.Len(t, migs, 2)
	require.Equal(t, 1, migs[0].Version)
	require.Equal(t, "create a", migs[0].Name)
	require.Contains(t, migs[1].Down, "DROP TABLE b")
}

func TestMigrateUpAndDown(t *testing.T) {
	db := openDB(t)
	m := NewMigrator(db, NewFileProvider(testFS(), "m", ""))

	require.NoError(t, m.MigrateUp())
	v, err := m.GetCurrentVersion()
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.True(t, tableExists(t, db, "a"))
	require.True(t, tableExists(t, db, "b"))

	require.NoError(t, m.MigrateUp())

	require.NoError(t, m.MigrateTo(1))
	v, err = m.GetCurrentVersion()
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.False(t, tableExists(t, db, "b"))

	require.NoError(t, m.MigrateTo(0))
	v, err = m.GetCurrentVersion()
	require.NoError(t, err)
	require.Equal(t, 0, v)
	require.False(t, tableExists(t, db, "a"))
}

func TestMigrateMissingDirectory(t *testing.T) {
	db := openDB(t)
	err := NewMigrator(db, NewFileProvider(testFS(), "nope", "")).MigrateUp()
	require.Error(t, err)
}
