// Package storagetest opens migrated databases for store tests.
package storagetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"clubhouse/internal/adapters/storage"
)

// OpenSQLite returns a migrated file-backed SQLite database under t.TempDir().
// File-backed so that concurrent tests contend on a real lock.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "clubhouse.db")
	db, err := storage.Open(ctx, storage.SQLite, storage.SQLiteDSN(path))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(ctx, db, storage.SQLite); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
