// pkg/db/dbtest/dbtest.go

// Package dbtest opens throwaway, fully migrated databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"splitflow/pkg/db"
)

// SQLiteConfig returns a config pointing at a fresh file under t.TempDir().
func SQLiteConfig(t testing.TB) db.Config {
	t.Helper()
	return db.Config{
		Driver:     db.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "ledger.db"),
	}
}

// Open opens and migrates a SQLite database that is closed when the test ends.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	return OpenConfig(t, SQLiteConfig(t))
}

// OpenConfig opens cfg and registers a cleanup that closes it.
func OpenConfig(t testing.TB, cfg db.Config) *sqlx.DB {
	t.Helper()
	database, err := db.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}
