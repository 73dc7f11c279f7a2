package source

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func testSource(t *testing.T) *ScriptSource {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewScriptSource("Reminders", time.Second, logger)
}

func TestParseItems(t *testing.T) {
	s := testSource(t)
	out := "x-rem-1|2024-03-05T08:15:00Z|pay rent\n" +
		"x-rem-2|2024-03-05T09:00:00Z|call dentist\n"
	items := s.parseItems(out)
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].ID != "x-rem-1" || items[0].Text != "pay rent" {
		t.Errorf("item[0] = %+v", items[0])
	}
	want := time.Date(2024, 3, 5, 8, 15, 0, 0, time.UTC)
	if !items[0].CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", items[0].CreatedAt, want)
	}
}

func TestParseItemsSkipsMalformed(t *testing.T) {
	s := testSource(t)
	out := "garbage line\n" +
		"only-two|fields\n" +
		"x-rem-1|not-a-date|text\n" +
		"\n" +
		"x-rem-2|2024-03-05T09:00:00Z|kept\n"
	items := s.parseItems(out)
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(items), items)
	}
	if items[0].Text != "kept" {
		t.Errorf("Text = %q", items[0].Text)
	}
}

func TestParseItemsTextWithPipes(t *testing.T) {
	// Only the first two separators split; the text keeps its pipes.
	s := testSource(t)
	items := s.parseItems("x-1|2024-03-05T09:00:00Z|a | b | c")
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].Text != "a | b | c" {
		t.Errorf("Text = %q", items[0].Text)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-03-05T08:15:00Z", true},
		{"2024-03-05T08:15:00+02:00", true},
		{"2024-03-05T08:15:00", true},
		{"March 5 2024", false},
		{"", false},
	}
	for _, c := range cases {
		_, err := parseTimestamp(c.in)
		if (err == nil) != c.ok {
			t.Errorf("parseTimestamp(%q) err = %v, want ok=%v", c.in, err, c.ok)
		}
	}
}

func TestNewScriptSourceDefaultTimeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScriptSource("Reminders", 0, logger)
	if s.timeout != DefaultScriptTimeout {
		t.Errorf("timeout = %v, want %v", s.timeout, DefaultScriptTimeout)
	}
}
