// Package note implements rendering and marker-anchored patching of daily
// note content. Patching is deliberately literal: it locates marker text and
// a small set of structural tokens (headings, dividers) and splices strings,
// preserving every byte it does not own. There is no markdown parsing.
package note

import (
	"fmt"
	"strings"
)

// Style selects how an item's text is rendered into a note line.
type Style string

// Supported styles. Checkbox comes in two variants: the plain variant used
// by free-form sections and the numbered variant used by bounded slot
// sections such as daily priorities.
const (
	StylePlain            Style = "plain"
	StyleBlockquote       Style = "blockquote"
	StyleBullet           Style = "bullet"
	StyleNumbered         Style = "numbered"
	StyleCheckbox         Style = "checkbox"
	StyleCheckboxNumbered Style = "checkbox-numbered"
)

// ValidStyle reports whether s is one of the supported styles.
func ValidStyle(s Style) bool {
	switch s {
	case StylePlain, StyleBlockquote, StyleBullet, StyleNumbered, StyleCheckbox, StyleCheckboxNumbered:
		return true
	}
	return false
}

// Render turns one item's text into one note line. index is the 1-based
// position of the item within the current render batch; it matters only for
// the numbered styles. Unknown styles render as plain text.
func Render(text string, style Style, index int) string {
	switch style {
	case StyleBlockquote:
		return "> " + text
	case StyleBullet:
		return "- " + text
	case StyleNumbered:
		return fmt.Sprintf("%d. %s", index, text)
	case StyleCheckbox:
		return "- [ ] " + text
	case StyleCheckboxNumbered:
		return fmt.Sprintf("%d. [ ] %s", index, text)
	default:
		return text
	}
}

// Placeholder returns the empty-slot line for a style, used to pad a bounded
// section up to its slot count so the section keeps its visual shape.
func Placeholder(style Style, index int) string {
	switch style {
	case StyleBlockquote:
		return ">"
	case StyleBullet:
		return "-"
	case StyleNumbered:
		return fmt.Sprintf("%d.", index)
	case StyleCheckbox:
		return "- [ ]"
	case StyleCheckboxNumbered:
		return fmt.Sprintf("%d. [ ]", index)
	default:
		return ""
	}
}

// RenderTimestamped renders an inbound entry as a timestamped bullet,
// ignoring the section's configured style. hhmm is a pre-formatted "15:04"
// clock string.
func RenderTimestamped(text, hhmm string) string {
	return fmt.Sprintf("- %s %s", hhmm, text)
}

// slotLine reports whether line looks like it belongs to a bounded section
// rendered with style: a slot-prefixed line or a blank line. A horizontal
// divider never belongs to a section.
func slotLine(style Style, line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if trimmed == "---" {
		return false
	}
	switch style {
	case StyleBlockquote:
		return strings.HasPrefix(trimmed, ">")
	case StyleBullet, StyleCheckbox:
		return strings.HasPrefix(trimmed, "-")
	case StyleNumbered, StyleCheckboxNumbered:
		return startsWithOrdinal(trimmed)
	default:
		return false
	}
}

// startsWithOrdinal reports whether s begins with "<digits>.".
func startsWithOrdinal(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i < len(s) && s[i] == '.'
}
