package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dssafford/daylog/internal/apperr"
)

// DefaultFileFormat is the time layout for daily note filenames.
const DefaultFileFormat = "2006-01-02.md"

// FS implements Provider backed by the local file system. The notes
// directory may live on an asynchronously syncing filesystem, so callers
// that need durability must verify content after writing (see syncer).
type FS struct {
	root       string // absolute path to the notes directory
	fileFormat string // time layout producing the note filename
}

// NewFS creates an FS provider rooted at the given notes directory.
// The directory must already exist.
func NewFS(root, fileFormat string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if fileFormat == "" {
		fileFormat = DefaultFileFormat
	}
	return &FS{root: abs, fileFormat: fileFormat}, nil
}

// Path returns the note path for date: <root>/<date per fileFormat>.
func (f *FS) Path(date time.Time) string {
	return filepath.Join(f.root, date.Format(f.fileFormat))
}

// Exists reports whether the note for date is on disk.
func (f *FS) Exists(date time.Time) bool {
	info, err := os.Stat(f.Path(date))
	return err == nil && !info.IsDir()
}

// Read returns the full content of the note for date.
func (f *FS) Read(date time.Time) ([]byte, error) {
	data, err := os.ReadFile(f.Path(date))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: note %s: %w", date.Format(f.fileFormat), apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", date.Format(f.fileFormat), err)
	}
	return data, nil
}

// Write atomically replaces the note content: tmp file → fsync → rename.
// It refuses to create a note that does not already exist.
func (f *FS) Write(date time.Time, content []byte) error {
	abs := f.Path(date)
	if !f.Exists(date) {
		return fmt.Errorf("storage: note %s: %w", date.Format(f.fileFormat), apperr.ErrNotFound)
	}

	tmp, err := os.CreateTemp(f.root, ".daylog-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
