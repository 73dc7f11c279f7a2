// Package testutil provides shared test helpers for setting up note directories and state databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dssafford/daylog/internal/state"
	"github.com/dssafford/daylog/internal/storage"
)

// TestStateDB creates a temporary SQLite state database that is automatically cleaned up.
func TestStateDB(t *testing.T) *state.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "daylog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := state.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestNotes creates a temporary notes directory with a storage.Provider.
func TestNotes(t *testing.T) (string, storage.Provider) {
	t.Helper()
	notesDir := t.TempDir()
	store, err := storage.NewFS(notesDir, storage.DefaultFileFormat)
	if err != nil {
		t.Fatal(err)
	}
	return notesDir, store
}

// SeedNote writes a daily note for date directly into dir, bypassing the provider.
func SeedNote(t *testing.T, dir string, date time.Time, content string) string {
	t.Helper()
	path := filepath.Join(dir, date.Format("2006-01-02")+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
