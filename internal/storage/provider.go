// Package storage implements the daily-note document store: one text file
// per calendar date under a notes directory.
package storage

import "time"

// Provider is the interface for daily-note document operations. Notes are
// keyed by calendar date and read and written whole; creating a missing
// note is out of scope for this system.
type Provider interface {
	// Read returns the full content of the note for date, or
	// apperr.ErrNotFound when it does not exist.
	Read(date time.Time) ([]byte, error)
	// Write atomically replaces the content of the note for date.
	Write(date time.Time, content []byte) error
	// Exists reports whether the note for date is present on disk.
	Exists(date time.Time) bool
	// Path returns the on-disk path of the note for date.
	Path(date time.Time) string
}
