package note

import (
	"encoding/json"
	"strings"

	"github.com/dssafford/daylog/internal/apperr"
)

// headerPrefix marks a structural heading marker. Header markers get
// cumulative inserts bounded by the next divider or same-level heading;
// every other marker is a field marker with replace-or-insert semantics.
const headerPrefix = "## "

// placeholders is the closed set of bare tokens treated as an empty slot on
// the line following a field marker. A note using a different placeholder
// convention falls into the insert branch instead.
var placeholders = map[string]struct{}{
	"":   {},
	">":  {},
	"-":  {},
	"1.": {},
	"2.": {},
	"3.": {},
}

// IsHeaderMarker reports whether marker anchors a structural heading section.
func IsHeaderMarker(marker string) bool {
	return strings.HasPrefix(marker, "##")
}

// Patch splices rendered lines into doc at the section anchored by marker
// and returns the new document text. The document is returned unchanged
// alongside apperr.ErrMarkerNotFound when the marker is absent.
//
// Header markers accumulate: new lines land immediately before the section
// boundary (next "---" divider line or next "## " heading, else document
// end), after any content from earlier writes. Field markers replace a
// single empty-placeholder line right after the marker, or push existing
// content down when no placeholder is present.
func Patch(doc, marker string, lines []string) (string, error) {
	markerPos := strings.Index(doc, marker)
	if markerPos < 0 {
		return doc, apperr.ErrMarkerNotFound
	}
	lineEnd := endOfLine(doc, markerPos)
	joined := strings.Join(lines, "\n")

	if IsHeaderMarker(marker) {
		insertPos := lineEnd + headerInsertOffset(doc[lineEnd:])
		return doc[:insertPos] + joined + "\n" + doc[insertPos:], nil
	}

	rest := doc[lineEnd:]
	firstLineLen := lineLen(rest)
	firstLine := strings.TrimSpace(strings.TrimSuffix(rest[:firstLineLen], "\n"))
	if _, ok := placeholders[firstLine]; ok {
		// Swap the placeholder line for the new content, keeping the
		// newline that terminated it.
		trailing := ""
		if strings.HasSuffix(rest[:firstLineLen], "\n") {
			trailing = "\n"
		}
		return doc[:lineEnd] + joined + trailing + rest[firstLineLen:], nil
	}
	return doc[:lineEnd] + joined + "\n" + rest, nil
}

// PatchSlots rewrites the bounded section anchored by marker: the first
// min(len(texts), n) items are rendered with style and the remaining slots
// up to n are padded with placeholders. The span owned by the section, every
// contiguous slot-prefixed or blank line right after the marker line, is
// replaced wholesale, never appended to.
func PatchSlots(doc, marker string, style Style, texts []string, n int) (string, error) {
	markerPos := strings.Index(doc, marker)
	if markerPos < 0 {
		return doc, apperr.ErrMarkerNotFound
	}
	lineEnd := endOfLine(doc, markerPos)

	if len(texts) > n {
		texts = texts[:n]
	}
	lines := make([]string, 0, n)
	for i, t := range texts {
		lines = append(lines, Render(t, style, i+1))
	}
	for i := len(texts) + 1; i <= n; i++ {
		lines = append(lines, Placeholder(style, i))
	}

	span := ownedSpan(doc[lineEnd:], style)
	return doc[:lineEnd] + strings.Join(lines, "\n") + "\n" + doc[lineEnd+span:], nil
}

// ExpandText normalizes one item's raw text into the lines to render. Text
// that looks like a serialized list literal (bracket-delimited) is expanded
// into its string elements; if it fails to parse as JSON it degrades to
// literal bracket-stripping rather than failing.
func ExpandText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return []string{text}
	}

	var parsed []any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		inner := strings.TrimSpace(text[1 : len(text)-1])
		if inner == "" {
			return nil
		}
		return []string{inner}
	}
	var out []string
	for _, el := range parsed {
		s, ok := el.(string)
		if !ok {
			// Mixed-type literal: keep the raw text as a single line.
			return []string{text}
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// endOfLine returns the index just past the newline terminating the line
// containing pos, or len(doc) when the line is unterminated.
func endOfLine(doc string, pos int) int {
	nl := strings.IndexByte(doc[pos:], '\n')
	if nl < 0 {
		return len(doc)
	}
	return pos + nl + 1
}

// lineLen returns the length of the first line of s including its newline.
func lineLen(s string) int {
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return len(s)
	}
	return nl + 1
}

// headerInsertOffset finds where new header-section content goes within
// rest (the text after the marker line): immediately before the next
// divider or next "## " heading, whichever comes first, else at the start
// of rest's end (cumulative after prior content).
func headerInsertOffset(rest string) int {
	divider := strings.Index(rest, "\n---")
	heading := strings.Index(rest, "\n"+headerPrefix)

	switch {
	case divider >= 0 && (heading < 0 || divider < heading):
		return divider + 1
	case heading >= 0:
		return heading + 1
	default:
		return len(rest)
	}
}

// ownedSpan measures the byte length of the contiguous run of
// slot-prefix-or-blank lines at the start of rest.
func ownedSpan(rest string, style Style) int {
	span := 0
	for span < len(rest) {
		ll := lineLen(rest[span:])
		line := strings.TrimSuffix(rest[span:span+ll], "\n")
		if !slotLine(style, line) {
			break
		}
		span += ll
	}
	return span
}
