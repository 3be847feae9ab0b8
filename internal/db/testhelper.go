package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a migrated write/read pool pair on a throwaway
// database file under t.TempDir() and registers both pools with
// t.Cleanup. Tests with no use for the split can do everything on
// writeDB.
func OpenTestSQLite(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()

	writeDB, readDB, err := OpenSQLitePair(filepath.Join(t.TempDir(), "posgate-test.sqlite"), 2)
	if err != nil {
		t.Fatalf("open sqlite pair: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	if err := RunMigrations(writeDB); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return writeDB, readDB
}
