package api

import "github.com/dssafford/daylog/internal/entryservice"

// EntryRequest is the request body for creating an entry.
type EntryRequest = entryservice.Payload

// SectionInfo describes one configured section in list responses.
type SectionInfo struct {
	Marker string `json:"marker"`
	Format string `json:"format"`
	Slots  int    `json:"slots,omitempty"`
}
