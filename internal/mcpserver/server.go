// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes daily-note entry and sync tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dssafford/daylog/internal/apperr"
	"github.com/dssafford/daylog/internal/entryservice"
	"github.com/dssafford/daylog/internal/note"
	"github.com/dssafford/daylog/internal/storage"
	"github.com/dssafford/daylog/internal/syncer"
)

// Server wraps the MCP server with daylog tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *entryservice.Service
	sync  *syncer.Syncer
	store storage.Provider
}

// New creates a new MCP server with all daylog tools registered.
func New(svc *entryservice.Service, sync *syncer.Syncer, store storage.Provider) *Server {
	s := &Server{svc: svc, sync: sync, store: store}

	s.mcp = server.NewMCPServer(
		"daylog",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("log_entry",
		mcp.WithDescription("Write a text entry into a named section of today's daily note. "+
			"The note must already exist; sections are resolved against the configured table "+
			"(see list_sections)."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section key, e.g. 'log' or 'gratitude'")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Entry text; a [bracketed, list] expands to multiple lines")),
	), s.logEntry)

	s.mcp.AddTool(mcp.NewTool("read_daily_note",
		mcp.WithDescription("Read the full content of a daily note."),
		mcp.WithString("date", mcp.Description("Calendar date as YYYY-MM-DD (defaults to today)")),
	), s.readDailyNote)

	s.mcp.AddTool(mcp.NewTool("list_sections",
		mcp.WithDescription("List the configured sections with their markers, formats, and slot bounds."),
	), s.listSections)

	s.mcp.AddTool(mcp.NewTool("sync_section",
		mcp.WithDescription("Run the fetch→write→acknowledge sync for one configured section."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section key to sync")),
		mcp.WithString("force", mcp.Description("Pass 'true' to bypass the per-day guard")),
	), s.syncSection)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) logEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.svc.Apply(ctx, section, note.ExpandText(text), false); err != nil {
		switch {
		case errors.Is(err, apperr.ErrUnknownSection):
			return mcp.NewToolResultError(fmt.Sprintf("unknown section: %s", section)), nil
		case errors.Is(err, apperr.ErrNotFound):
			return mcp.NewToolResultError("daily note does not exist"), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("wrote to %s", section)), nil
}

func (s *Server) readDailyNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := time.Now()
	if raw, err := req.RequireString("date"); err == nil && raw != "" {
		parsed, parseErr := time.Parse("2006-01-02", raw)
		if parseErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", raw)), nil
		}
		date = parsed
	}

	data, err := s.store.Read(date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no daily note for %s", date.Format("2006-01-02"))), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listSections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sections := s.svc.Sections()
	keys := make([]string, 0, len(sections))
	for key := range sections {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		sec := sections[key]
		fmt.Fprintf(&b, "%s: marker=%q format=%s", key, sec.Marker, sec.Format)
		if sec.Bounded() {
			fmt.Fprintf(&b, " slots=%d", sec.Slots)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) syncSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	force := false
	if f, err := req.RequireString("force"); err == nil {
		force = f == "true"
	}

	sum := s.sync.Run(ctx, []string{section}, force)
	if sum.Failed > 0 {
		return mcp.NewToolResultError(fmt.Sprintf("sync of %s failed", section)), nil
	}
	if sum.Skipped > 0 {
		return mcp.NewToolResultText(fmt.Sprintf("%s already processed today (use force=true to re-run)", section)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("synced %d item(s) from %s", sum.Synced, section)), nil
}
