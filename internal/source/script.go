package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dssafford/daylog/internal/apperr"
)

const (
	osacompileBin = "/usr/bin/osacompile"
	osascriptBin  = "/usr/bin/osascript"
	openBin       = "/usr/bin/open"

	// DefaultScriptTimeout bounds a single scripting-host invocation.
	DefaultScriptTimeout = 30 * time.Second
)

// fetchScript lists incomplete items of a list as "id|iso8601|text" lines.
const fetchScript = `
tell application "Reminders"
set output to ""
set allLists to lists
repeat with aList in allLists
if name of aList is %q then
set incompleteReminders to (reminders of aList whose completed is false)
repeat with r in incompleteReminders
set remId to id of r
set remName to name of r
set remCreated to creation date of r
set y to year of remCreated
set m to text -2 thru -1 of ("0" & (month of remCreated as integer))
set d to text -2 thru -1 of ("0" & day of remCreated)
set h to text -2 thru -1 of ("0" & hours of remCreated)
set mins to text -2 thru -1 of ("0" & minutes of remCreated)
set s to text -2 thru -1 of ("0" & seconds of remCreated)
set isoDate to y & "-" & m & "-" & d & "T" & h & ":" & mins & ":" & s & "Z"
set output to output & remId & "|" & isoDate & "|" & remName & linefeed
end repeat
end if
end repeat
end tell
return output
`

// ackScript marks the listed item ids complete and returns how many it hit.
const ackScript = `
set targetIds to {%s}
set markedCount to 0
tell application "Reminders"
	repeat with targetId in targetIds
		try
			set r to reminder id targetId
			set completed of r to true
			set markedCount to markedCount + 1
		end try
	end repeat
end tell
return markedCount
`

// ScriptSource implements Source by compiling and running programs on the
// host scripting runtime. Scripts are pre-compiled (osacompile → osascript)
// because the first run of an uncompiled script against a freshly woken
// application is flaky.
type ScriptSource struct {
	app     string // helper application to wake, e.g. "Reminders"
	timeout time.Duration
	workDir string
	logger  *slog.Logger
}

// NewScriptSource creates a ScriptSource that wakes app before the first
// query of a run. A zero timeout falls back to DefaultScriptTimeout.
func NewScriptSource(app string, timeout time.Duration, logger *slog.Logger) *ScriptSource {
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	return &ScriptSource{
		app:     app,
		timeout: timeout,
		workDir: os.TempDir(),
		logger:  logger,
	}
}

// Wake opens the helper application in the background so the first scripted
// query does not time out against a cold process. Failure is logged and
// tolerated; the fetch itself will surface a real outage.
func (s *ScriptSource) Wake(ctx context.Context) {
	if s.app == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := exec.CommandContext(ctx, openBin, "-a", s.app, "-g").Run(); err != nil {
		s.logger.Warn("source: wake failed", slog.String("app", s.app), slog.String("error", err.Error()))
		return
	}
	// Give the app a moment to register with the scripting host.
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
	}
}

// FetchPending runs the fetch script for list and parses its output.
// Malformed lines are skipped with a warning, never fatal.
func (s *ScriptSource) FetchPending(ctx context.Context, list string) ([]Item, error) {
	out, err := s.run(ctx, fmt.Sprintf(fetchScript, list))
	if err != nil {
		return nil, fmt.Errorf("source: fetch %q: %w: %v", list, apperr.ErrFetch, err)
	}
	return s.parseItems(out), nil
}

// Acknowledge marks the given items complete at the source.
func (s *ScriptSource) Acknowledge(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	out, err := s.run(ctx, fmt.Sprintf(ackScript, strings.Join(quoted, ", ")))
	if err != nil {
		return 0, fmt.Errorf("source: acknowledge: %w: %v", apperr.ErrAck, err)
	}
	count, convErr := strconv.Atoi(strings.TrimSpace(out))
	if convErr != nil {
		s.logger.Warn("source: unparseable ack count", slog.String("output", out))
		return len(ids), nil
	}
	if count != len(ids) {
		s.logger.Warn("source: partial acknowledge",
			slog.Int("requested", len(ids)), slog.Int("acknowledged", count))
	}
	return count, nil
}

// run compiles script and executes the compiled form, returning stdout.
func (s *ScriptSource) run(ctx context.Context, script string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	srcPath := filepath.Join(s.workDir, "daylog_source.applescript")
	binPath := filepath.Join(s.workDir, "daylog_source.scpt")
	if err := os.WriteFile(srcPath, []byte(strings.TrimSpace(script)), 0o600); err != nil {
		return "", fmt.Errorf("write script: %w", err)
	}

	if out, err := exec.CommandContext(ctx, osacompileBin, "-o", binPath, srcPath).CombinedOutput(); err != nil {
		return "", fmt.Errorf("compile: %w: %s", err, strings.TrimSpace(string(out)))
	}

	cmd := exec.CommandContext(ctx, osascriptBin, binPath)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// parseItems decodes "id|iso8601|text" lines into Items, skipping anything
// malformed.
func (s *ScriptSource) parseItems(out string) []Item {
	var items []Item
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			s.logger.Warn("source: skipping malformed line", slog.String("line", line))
			continue
		}
		ts, err := parseTimestamp(strings.TrimSpace(parts[1]))
		if err != nil {
			s.logger.Warn("source: skipping entry with bad timestamp",
				slog.String("timestamp", parts[1]), slog.String("error", err.Error()))
			continue
		}
		items = append(items, Item{
			ID:        strings.TrimSpace(parts[0]),
			CreatedAt: ts,
			Text:      strings.TrimSpace(parts[2]),
		})
	}
	return items
}

// parseTimestamp accepts RFC 3339 and the scripting host's second-precision
// variant without a zone suffix.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
