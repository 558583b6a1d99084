package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/garyjia/lease-reports/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "test.db"), MaxOpenConns: 1}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Path: "data/leases.db"}
	assert.Equal(t, "file:data/leases.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", cfg.DSN())
}

func TestLoadMigrations_SortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.sql":   {Data: []byte("SELECT 1;")},
		"002_second.sql":  {Data: []byte("SELECT 1;")},
		"001_first.sql":   {Data: []byte("SELECT 1;")},
		"README.md":       {Data: []byte("ignored")},
		"drafts/skip.sql": {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{got[0].Version, got[1].Version, got[2].Version})
	assert.Equal(t, "first", got[0].Name)
}

func TestLoadMigrations_RejectsDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := LoadMigrations(fsys)
	assert.Error(t, err)
}

func TestMigrator_RunIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	require.NoError(t, m.Run(migrations.FS))
	require.NoError(t, m.Run(migrations.FS))

	applied, err := m.AppliedVersions()
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, applied)

	for _, table := range []string{"leases", "payments", "exports"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}
