// Package syncer implements the verified writer and the per-section sync
// orchestrator that moves pending items from the external source into the
// day's note.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dssafford/daylog/internal/apperr"
	"github.com/dssafford/daylog/internal/storage"
)

// Writer persists patched note content and confirms it is actually readable
// back. The notes directory may sit on an asynchronously syncing filesystem
// whose writes are not immediately visible; verify-then-retry defends
// against that race. This is a correctness mechanism, not an optimization:
// acknowledgment of items is gated on a verified write.
type Writer struct {
	store       storage.Provider
	attempts    int
	retryDelay  time.Duration
	settleDelay time.Duration
	logger      *slog.Logger
}

// NewWriter creates a Writer. attempts < 1 is clamped to 1.
func NewWriter(store storage.Provider, attempts int, retryDelay, settleDelay time.Duration, logger *slog.Logger) *Writer {
	if attempts < 1 {
		attempts = 1
	}
	return &Writer{
		store:       store,
		attempts:    attempts,
		retryDelay:  retryDelay,
		settleDelay: settleDelay,
		logger:      logger,
	}
}

// WriteVerified runs the full read → patch → write → settle → re-read →
// verify cycle for the note of date, retrying the whole cycle on a failed
// verification. patch computes new content from the current on-disk
// content, so each retry re-reads and re-patches: the note may have changed
// underneath. needles are the rendered lines that must all be present in
// the re-read content for the write to count.
//
// A patch error (e.g. missing marker) aborts immediately; exhausting all
// attempts returns apperr.ErrWriteVerify.
func (w *Writer) WriteVerified(ctx context.Context, date time.Time, patch func(current string) (string, error), needles []string) error {
	var lastErr error

	for attempt := 1; attempt <= w.attempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, w.retryDelay); err != nil {
				return err
			}
		}

		current, err := w.store.Read(date)
		if err != nil {
			// Note missing is a configuration problem, not a storage race.
			if errors.Is(err, apperr.ErrNotFound) {
				return err
			}
			lastErr = err
			w.logger.Warn("writer: read failed", slog.Int("attempt", attempt), slog.String("error", err.Error()))
			continue
		}

		updated, err := patch(string(current))
		if err != nil {
			return err
		}

		if err := w.store.Write(date, []byte(updated)); err != nil {
			lastErr = err
			w.logger.Warn("writer: write failed", slog.Int("attempt", attempt), slog.String("error", err.Error()))
			continue
		}

		if err := sleepCtx(ctx, w.settleDelay); err != nil {
			return err
		}

		verify, err := w.store.Read(date)
		if err != nil {
			lastErr = err
			w.logger.Warn("writer: verify read failed", slog.Int("attempt", attempt), slog.String("error", err.Error()))
			continue
		}

		if missing := missingLines(string(verify), needles); len(missing) > 0 {
			lastErr = fmt.Errorf("content missing after re-read: %q", missing[0])
			w.logger.Warn("writer: verification failed",
				slog.Int("attempt", attempt),
				slog.Int("missing", len(missing)))
			continue
		}

		if attempt > 1 {
			w.logger.Info("writer: verified after retry", slog.Int("attempt", attempt))
		}
		return nil
	}

	return fmt.Errorf("syncer: %w after %d attempts: %v", apperr.ErrWriteVerify, w.attempts, lastErr)
}

// missingLines returns the needles not present in content.
func missingLines(content string, needles []string) []string {
	var missing []string
	for _, n := range needles {
		if n == "" {
			continue
		}
		if !strings.Contains(content, n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// sleepCtx blocks for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
