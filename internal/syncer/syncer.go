package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dssafford/daylog/internal/apperr"
	"github.com/dssafford/daylog/internal/note"
	"github.com/dssafford/daylog/internal/source"
	"github.com/dssafford/daylog/internal/state"
	"github.com/dssafford/daylog/internal/storage"
)

// Section is one configured sync target: a source list feeding a marker in
// the daily note.
type Section struct {
	note.Section

	Key       string
	List      string
	AlwaysRun bool // bypasses the per-day idempotency guard
}

// Summary aggregates one sync invocation across sections. Any failed
// section makes the invocation's exit status non-zero; skips and warnings
// do not.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Synced    int // total items written
	Warnings  int
}

// Syncer drives the per-section pipeline: fetch → idempotency guard →
// render/patch/verified-write → acknowledge → mark processed. Steps are
// strictly ordered and never independently retried mid-sequence; a full
// restart from fetch only happens on the next external invocation.
type Syncer struct {
	sections map[string]Section
	src      source.Source
	store    storage.Provider
	state    state.Store
	writer   *Writer
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Syncer over the given collaborators.
func New(sections map[string]Section, src source.Source, store storage.Provider, st state.Store, writer *Writer, logger *slog.Logger) *Syncer {
	return &Syncer{
		sections: sections,
		src:      src,
		store:    store,
		state:    st,
		writer:   writer,
		logger:   logger,
		now:      time.Now,
	}
}

// Run syncs the named sections in order and returns the folded summary.
// force bypasses the per-day guard. The run assumes it is the only writer
// of the note for its duration; overlapping invocations are not guarded.
func (s *Syncer) Run(ctx context.Context, keys []string, force bool) Summary {
	day := state.Day(s.now())

	// Records from prior days carry no meaning; discard them lazily.
	if err := s.state.Prune(day); err != nil {
		s.logger.Warn("sync: prune failed", slog.String("error", err.Error()))
	}
	processed, err := s.state.Processed(day)
	if err != nil {
		s.logger.Warn("sync: load processed state failed", slog.String("error", err.Error()))
		processed = map[string]state.Record{}
	}

	var sum Summary
	for _, key := range keys {
		res := s.syncSection(ctx, key, day, processed, force)
		switch {
		case res.skipped:
			sum.Skipped++
		case res.err != nil:
			s.logger.Error("sync: section failed",
				slog.String("section", key), slog.String("error", res.err.Error()))
			sum.Failed++
		default:
			sum.Succeeded++
			sum.Synced += res.count
		}
		sum.Warnings += res.warnings
	}

	s.logger.Info("sync: complete",
		slog.Int("succeeded", sum.Succeeded),
		slog.Int("failed", sum.Failed),
		slog.Int("skipped", sum.Skipped),
		slog.Int("items", sum.Synced))
	return sum
}

type sectionResult struct {
	count    int
	warnings int
	skipped  bool
	err      error
}

func (s *Syncer) syncSection(ctx context.Context, key, day string, processed map[string]state.Record, force bool) sectionResult {
	sec, ok := s.sections[key]
	if !ok {
		return sectionResult{err: fmt.Errorf("sync: %w: %q", apperr.ErrUnknownSection, key)}
	}

	if !sec.AlwaysRun && !force {
		if rec, done := processed[key]; done {
			s.logger.Info("sync: skipping already-processed section",
				slog.String("section", key),
				slog.Time("processed_at", rec.ProcessedAt))
			return sectionResult{skipped: true}
		}
	}

	items, err := s.src.FetchPending(ctx, sec.List)
	if err != nil {
		return sectionResult{err: fmt.Errorf("sync: section %q: %w", key, err)}
	}
	if len(items) == 0 {
		s.logger.Info("sync: nothing pending", slog.String("section", key))
		return sectionResult{}
	}

	// Items within one write batch are ordered ascending by creation time.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	var res sectionResult
	written := items
	if sec.Bounded() && len(items) > sec.Slots {
		// Overflow is a warning, not an error: extras stay pending at the
		// source and reappear on a future run.
		s.logger.Warn("sync: truncating to slot bound",
			slog.String("section", key),
			slog.Int("pending", len(items)),
			slog.Int("slots", sec.Slots))
		written = items[:sec.Slots]
		res.warnings++
	}

	patch, needles := buildPatch(sec, written)

	date := s.now()
	if !s.store.Exists(date) {
		return sectionResult{err: fmt.Errorf("sync: section %q: daily note for %s: %w",
			key, state.Day(date), apperr.ErrNotFound)}
	}

	// Failure here is terminal for this invocation: do NOT acknowledge.
	// Items stay pending at the source; re-delivery (duplicate content) is
	// accepted over loss.
	if err := s.writer.WriteVerified(ctx, date, patch, needles); err != nil {
		return sectionResult{err: fmt.Errorf("sync: section %q: %w", key, err)}
	}

	ids := make([]string, len(written))
	for i, it := range written {
		ids[i] = it.ID
	}
	if _, err := s.src.Acknowledge(ctx, ids); err != nil {
		// Content is already safely persisted; duplicates on a future run
		// beat silent loss, so this downgrades to a warning.
		s.logger.Warn("sync: acknowledge failed after verified write",
			slog.String("section", key), slog.String("error", err.Error()))
		res.warnings++
	}

	if !sec.AlwaysRun {
		if err := s.state.Mark(day, key, len(written)); err != nil {
			s.logger.Warn("sync: mark processed failed",
				slog.String("section", key), slog.String("error", err.Error()))
			res.warnings++
		}
	}

	s.logger.Info("sync: section complete",
		slog.String("section", key), slog.Int("items", len(written)))
	res.count = len(written)
	return res
}

// buildPatch prepares the patch function and the rendered lines whose
// presence proves the write landed. The patch closure recomputes against
// whatever content is current at write time.
func buildPatch(sec Section, written []source.Item) (func(string) (string, error), []string) {
	if sec.Bounded() {
		texts := make([]string, len(written))
		needles := make([]string, len(written))
		for i, it := range written {
			texts[i] = it.Text
			needles[i] = note.Render(it.Text, sec.Format, i+1)
		}
		return func(current string) (string, error) {
			return note.PatchSlots(current, sec.Marker, sec.Format, texts, sec.Slots)
		}, needles
	}

	var lines []string
	for _, it := range written {
		for _, text := range note.ExpandText(it.Text) {
			lines = append(lines, note.Render(text, sec.Format, len(lines)+1))
		}
	}
	return func(current string) (string, error) {
		return note.Patch(current, sec.Marker, lines)
	}, lines
}
