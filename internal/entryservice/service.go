// Package entryservice resolves inbound entries ({section, text}) against
// the static section table and writes them into the day's note. It is the
// shared back end of every inbound surface: HTTP, drop folder, and MCP.
package entryservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dssafford/daylog/internal/apperr"
	"github.com/dssafford/daylog/internal/note"
	"github.com/dssafford/daylog/internal/storage"
	"github.com/dssafford/daylog/internal/syncer"
)

// Payload is the wire form of an inbound entry. Text may be a JSON string,
// a JSON array of strings, or a string that looks like a bracketed list.
// Timestamp accepts boolean true or the string "true" (clients are loose
// about this).
type Payload struct {
	Section   string          `json:"section"`
	Text      json.RawMessage `json:"text"`
	Timestamp any             `json:"timestamp,omitempty"`
}

// Timestamped reports whether the entry asked for a timestamped line.
func (p Payload) Timestamped() bool {
	switch v := p.Timestamp.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// Service applies inbound entries to the daily note.
type Service struct {
	sections map[string]note.Section
	store    storage.Provider
	writer   *syncer.Writer
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an entry service over the static section table.
func New(sections map[string]note.Section, store storage.Provider, writer *syncer.Writer, logger *slog.Logger) *Service {
	return &Service{
		sections: sections,
		store:    store,
		writer:   writer,
		logger:   logger,
		now:      time.Now,
	}
}

// Sections returns the configured section keys and their bindings.
func (s *Service) Sections() map[string]note.Section {
	return s.sections
}

// ApplyPayload normalizes and applies one inbound payload.
func (s *Service) ApplyPayload(ctx context.Context, p Payload) error {
	texts := NormalizeText(p.Text)
	return s.Apply(ctx, p.Section, texts, p.Timestamped())
}

// Apply writes texts into the section's slot in today's note through the
// verified writer. An unresolved section key is a rejection
// (apperr.ErrUnknownSection), never a crash.
func (s *Service) Apply(ctx context.Context, section string, texts []string, timestamped bool) error {
	key := strings.ToLower(strings.TrimSpace(section))
	if key == "" || len(texts) == 0 {
		return fmt.Errorf("entryservice: missing section or text")
	}
	sec, ok := s.sections[key]
	if !ok {
		return fmt.Errorf("entryservice: %w: %q", apperr.ErrUnknownSection, key)
	}

	date := s.now()
	if !s.store.Exists(date) {
		return fmt.Errorf("entryservice: daily note for %s: %w", date.Format("2006-01-02"), apperr.ErrNotFound)
	}

	var lines []string
	if timestamped {
		hhmm := s.now().Format("15:04")
		for _, t := range texts {
			lines = append(lines, note.RenderTimestamped(t, hhmm))
		}
	} else {
		for i, t := range texts {
			lines = append(lines, note.Render(t, sec.Format, i+1))
		}
	}

	patch := func(current string) (string, error) {
		if sec.Bounded() && !timestamped {
			return note.PatchSlots(current, sec.Marker, sec.Format, texts, sec.Slots)
		}
		return note.Patch(current, sec.Marker, lines)
	}

	if err := s.writer.WriteVerified(ctx, date, patch, lines); err != nil {
		return fmt.Errorf("entryservice: section %q: %w", key, err)
	}

	s.logger.Info("entry written",
		slog.String("section", key),
		slog.Int("lines", len(lines)))
	return nil
}

// NormalizeText converts a raw JSON text value into the lines to write.
// A JSON array keeps its non-empty string elements; a JSON string goes
// through bracket-literal expansion; anything else normalizes to nothing.
func NormalizeText(raw json.RawMessage) []string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []any
		if err := json.Unmarshal(raw, &list); err == nil {
			var out []string
			for _, el := range list {
				if s, ok := el.(string); ok {
					if s = strings.TrimSpace(s); s != "" {
						out = append(out, s)
					}
				}
			}
			return out
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return note.ExpandText(s)
}
