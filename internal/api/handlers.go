package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dssafford/daylog/internal/apperr"
	"github.com/dssafford/daylog/internal/entryservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *entryservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *entryservice.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateEntry handles POST /api/entries: {section, text, timestamp?}.
// text may be a string, a JSON array of strings, or a bracketed list
// literal; timestamp true renders a "- HH:MM text" line regardless of the
// section's format.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var p entryservice.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	texts := entryservice.NormalizeText(p.Text)
	if p.Section == "" || len(texts) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("section and text are required"))
		return
	}

	err := h.svc.Apply(r.Context(), p.Section, texts, p.Timestamped())
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrUnknownSection):
			writeJSON(w, http.StatusBadRequest, errorBody("unknown section: "+p.Section))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("daily note does not exist"))
		case errors.Is(err, apperr.ErrMarkerNotFound):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("section marker not found in daily note"))
		default:
			slog.Error("entry failed", slog.String("section", p.Section), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, okBody("wrote to "+p.Section))
}

// ListSections handles GET /api/sections and returns the static section table.
func (h *Handler) ListSections(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]SectionInfo, len(h.svc.Sections()))
	for key, sec := range h.svc.Sections() {
		out[key] = SectionInfo{
			Marker: sec.Marker,
			Format: string(sec.Format),
			Slots:  sec.Slots,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": out})
}
