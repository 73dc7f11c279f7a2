package inbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dssafford/daylog/internal/entryservice"
	"github.com/dssafford/daylog/internal/note"
	"github.com/dssafford/daylog/internal/storage"
	"github.com/dssafford/daylog/internal/syncer"
	"github.com/dssafford/daylog/internal/testutil"
)

func newTestWatcher(t *testing.T) (*Watcher, string, storage.Provider) {
	t.Helper()
	dir, store := testutil.TestNotes(t)
	testutil.SeedNote(t, dir, time.Now(), "# Today\n\n## 📝 Daily Log\n\n---\n")

	sections := map[string]note.Section{
		"log": {Marker: "## 📝 Daily Log", Format: note.StylePlain},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wr := syncer.NewWriter(store, 1, 0, 0, logger)
	svc := entryservice.New(sections, store, wr, logger)

	dropDir := t.TempDir()
	return New([]string{dropDir}, svc, logger), dropDir, store
}

func drop(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSweepProcessesAndDeletes(t *testing.T) {
	w, dropDir, store := newTestWatcher(t)
	path := drop(t, dropDir, "entry.json", `{"section": "log", "text": "from the inbox"}`)

	w.Sweep(context.Background())

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("processed file not deleted")
	}
	data, err := store.Read(time.Now())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.Contains(string(data), "from the inbox") {
		t.Errorf("note missing entry:\n%s", data)
	}
}

func TestSweepLeavesInvalidFile(t *testing.T) {
	w, dropDir, _ := newTestWatcher(t)
	path := drop(t, dropDir, "broken.json", "not json at all")

	w.Sweep(context.Background())

	if _, err := os.Stat(path); err != nil {
		t.Error("invalid file should stay for inspection")
	}
}

func TestSweepLeavesFailedEntry(t *testing.T) {
	w, dropDir, _ := newTestWatcher(t)
	path := drop(t, dropDir, "bad-section.json", `{"section": "bogus", "text": "x"}`)

	w.Sweep(context.Background())

	if _, err := os.Stat(path); err != nil {
		t.Error("failed entry should stay for the next sweep")
	}
}

func TestSweepIgnoresOtherExtensions(t *testing.T) {
	w, dropDir, _ := newTestWatcher(t)
	path := drop(t, dropDir, "notes.md", `{"section": "log", "text": "x"}`)

	w.Sweep(context.Background())

	if _, err := os.Stat(path); err != nil {
		t.Error("non-entry file should be ignored")
	}
}

func TestSweepSkipsEmptyFile(t *testing.T) {
	w, dropDir, _ := newTestWatcher(t)
	path := drop(t, dropDir, "half-written.json", "")

	w.Sweep(context.Background())

	if _, err := os.Stat(path); err != nil {
		t.Error("empty file should stay until fully written")
	}
}

func TestSweepToleratesMissingDir(t *testing.T) {
	_, _, store := newTestWatcher(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wr := syncer.NewWriter(store, 1, 0, 0, logger)
	svc := entryservice.New(map[string]note.Section{}, store, wr, logger)

	w := New([]string{"/does/not/exist"}, svc, logger)
	w.Sweep(context.Background()) // must not panic
}

func TestEntryFile(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"a.json", true},
		{"a.JSON", true},
		{"a.txt", true},
		{"a.md", false},
		{"a", false},
		{".json", true},
	}
	for _, c := range cases {
		if got := entryFile(c.name); got != c.want {
			t.Errorf("entryFile(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}
