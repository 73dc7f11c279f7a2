package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dssafford/daylog/internal/apperr"
)

var testDay = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

func tempNotes(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir, DefaultFileFormat)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func seed(t *testing.T, fs *FS, date time.Time, content string) {
	t.Helper()
	if err := os.WriteFile(fs.Path(date), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPathUsesFileFormat(t *testing.T) {
	fs := tempNotes(t)
	got := filepath.Base(fs.Path(testDay))
	if got != "2024-03-15.md" {
		t.Errorf("Path base = %q", got)
	}
}

func TestReadMissingNote(t *testing.T) {
	fs := tempNotes(t)
	_, err := fs.Read(testDay)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestWriteRefusesToCreate(t *testing.T) {
	fs := tempNotes(t)
	err := fs.Write(testDay, []byte("new note"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if fs.Exists(testDay) {
		t.Error("Write created a note that did not exist")
	}
}

func TestWriteAndRead(t *testing.T) {
	fs := tempNotes(t)
	seed(t, fs, testDay, "# Friday\n")

	content := []byte("# Friday\n\n**Intention:**\nfocus\n")
	if err := fs.Write(testDay, content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := fs.Read(testDay)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	fs := tempNotes(t)
	seed(t, fs, testDay, "original")

	if err := fs.Write(testDay, []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(fs.root, ".daylog-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestExists(t *testing.T) {
	fs := tempNotes(t)
	if fs.Exists(testDay) {
		t.Error("Exists = true for missing note")
	}
	seed(t, fs, testDay, "x")
	if !fs.Exists(testDay) {
		t.Error("Exists = false for seeded note")
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/daylog-does-not-exist-"+t.Name(), DefaultFileFormat)
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "daylog-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name(), DefaultFileFormat)
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
