package testutil

import (
	"testing"

	"netbackup/internal/database"
	"netbackup/internal/nb"
)

// NewTestDatabase creates a new in-memory SQLite database with migrations applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) nb.Database {
	t.Helper()

	db, err := database.NewMemoryDatabase()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
