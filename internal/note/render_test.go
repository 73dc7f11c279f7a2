package note

import "testing"

func TestRenderStyles(t *testing.T) {
	cases := []struct {
		style Style
		index int
		want  string
	}{
		{StylePlain, 1, "buy milk"},
		{StyleBlockquote, 1, "> buy milk"},
		{StyleBullet, 1, "- buy milk"},
		{StyleNumbered, 2, "2. buy milk"},
		{StyleCheckbox, 1, "- [ ] buy milk"},
		{StyleCheckboxNumbered, 3, "3. [ ] buy milk"},
		{Style("bogus"), 1, "buy milk"},
	}
	for _, c := range cases {
		got := Render("buy milk", c.style, c.index)
		if got != c.want {
			t.Errorf("Render(%q, %d) = %q, want %q", c.style, c.index, got, c.want)
		}
	}
}

func TestPlaceholderStyles(t *testing.T) {
	cases := []struct {
		style Style
		index int
		want  string
	}{
		{StylePlain, 1, ""},
		{StyleBlockquote, 1, ">"},
		{StyleBullet, 1, "-"},
		{StyleNumbered, 2, "2."},
		{StyleCheckbox, 1, "- [ ]"},
		{StyleCheckboxNumbered, 3, "3. [ ]"},
	}
	for _, c := range cases {
		got := Placeholder(c.style, c.index)
		if got != c.want {
			t.Errorf("Placeholder(%q, %d) = %q, want %q", c.style, c.index, got, c.want)
		}
	}
}

func TestRenderTimestamped(t *testing.T) {
	got := RenderTimestamped("called the bank", "09:41")
	if got != "- 09:41 called the bank" {
		t.Errorf("RenderTimestamped = %q", got)
	}
}

func TestValidStyle(t *testing.T) {
	for _, s := range []Style{StylePlain, StyleBlockquote, StyleBullet, StyleNumbered, StyleCheckbox, StyleCheckboxNumbered} {
		if !ValidStyle(s) {
			t.Errorf("ValidStyle(%q) = false", s)
		}
	}
	if ValidStyle(Style("todo")) {
		t.Error("ValidStyle accepted unknown style")
	}
}

func TestSlotLine(t *testing.T) {
	cases := []struct {
		style Style
		line  string
		want  bool
	}{
		{StyleCheckboxNumbered, "1. [ ] first", true},
		{StyleCheckboxNumbered, "2. [ ]", true},
		{StyleCheckboxNumbered, "12. later", true},
		{StyleCheckboxNumbered, "", true},
		{StyleCheckboxNumbered, "   ", true},
		{StyleCheckboxNumbered, "---", false},
		{StyleCheckboxNumbered, "## Heading", false},
		{StyleCheckboxNumbered, "- bullet", false},
		{StyleBullet, "- item", true},
		{StyleBullet, "-", true},
		{StyleBullet, "1. nope", false},
		{StyleBlockquote, "> quoted", true},
		{StyleBlockquote, ">", true},
		{StyleBlockquote, "plain", false},
		{StylePlain, "anything", false},
	}
	for _, c := range cases {
		if got := slotLine(c.style, c.line); got != c.want {
			t.Errorf("slotLine(%q, %q) = %v, want %v", c.style, c.line, got, c.want)
		}
	}
}
