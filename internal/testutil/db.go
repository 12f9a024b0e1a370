package testutil

import (
	"database/sql"
	"testing"

	"github.com/marginote/marginote/internal/db"
)

// OpenTestDB returns an in-memory sqlite database with migrations applied.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}
