// Package testing provides database helpers and fixtures for folio tests.
package testing

import (
	"os"
	"testing"

	"github.com/aristath/folio/internal/database"
)

// NewTestDB creates a file-backed SQLite database with the portfolio schema applied.
// Each call gets its own temporary file so tests are isolated. The returned
// cleanup closes the connection and removes the file; it is also registered
// with t.Cleanup so calling it is optional.
func NewTestDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_portfolio_*.db")
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	closed := false
	cleanup := func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database: %v", err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(tmpPath + suffix)
		}
	}
	t.Cleanup(cleanup)

	return db, cleanup
}
