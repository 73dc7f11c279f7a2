// Package apperr defines sentinel errors shared across the application.
package apperr

import "errors"

var (
	// ErrNotFound means the daily note for the requested date does not exist.
	// Note creation is out of scope; the note must already be on disk.
	ErrNotFound = errors.New("not found")

	// ErrUnknownSection means an inbound entry named a section that is not
	// in the configured section table.
	ErrUnknownSection = errors.New("unknown section")

	// ErrMarkerNotFound means a section's marker text is absent from the
	// daily note. Fatal for that section only.
	ErrMarkerNotFound = errors.New("marker not found")

	// ErrWriteVerify means a write could not be verified readable after
	// exhausting all retry attempts.
	ErrWriteVerify = errors.New("write verification failed")

	// ErrFetch means the item source could not be queried.
	ErrFetch = errors.New("fetch failed")

	// ErrAck means the item source rejected the acknowledgment call. Content
	// is already persisted at that point, so duplicates on a future run are
	// preferred over loss.
	ErrAck = errors.New("acknowledge failed")
)
