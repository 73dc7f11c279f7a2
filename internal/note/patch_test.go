package note

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dssafford/daylog/internal/apperr"
)

func TestPatchMarkerNotFound(t *testing.T) {
	doc := "# Tuesday\n\n**Intention:**\n\n"
	got, err := Patch(doc, "**Nope:**", []string{"x"})
	if !errors.Is(err, apperr.ErrMarkerNotFound) {
		t.Fatalf("err = %v, want ErrMarkerNotFound", err)
	}
	if got != doc {
		t.Errorf("document changed on missing marker:\n%q", got)
	}
}

func TestPatchFieldReplacesPlaceholder(t *testing.T) {
	doc := "**Today's anxiety/concern:**\n>\n\n---\n"
	got, err := Patch(doc, "**Today's anxiety/concern:**", []string{"> pay rent"})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	want := "**Today's anxiety/concern:**\n> pay rent\n\n---\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPatchFieldBlankPlaceholder(t *testing.T) {
	doc := "**Intention:**\n\nmore text\n"
	got, err := Patch(doc, "**Intention:**", []string{"stay calm"})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	want := "**Intention:**\nstay calm\nmore text\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPatchFieldInsertsWhenNoPlaceholder(t *testing.T) {
	doc := "**Intention:**\nbe kind\n"
	got, err := Patch(doc, "**Intention:**", []string{"new line"})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	want := "**Intention:**\nnew line\nbe kind\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPatchHeaderBeforeDivider(t *testing.T) {
	doc := "## 📝 Daily Log\n\n---\n## Evening\n"
	got, err := Patch(doc, "## 📝 Daily Log", []string{"- 10:00 first"})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	want := "## 📝 Daily Log\n\n- 10:00 first\n---\n## Evening\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPatchHeaderAccumulates(t *testing.T) {
	doc := "## 📝 Daily Log\n\n---\n"
	got, err := Patch(doc, "## 📝 Daily Log", []string{"- 10:00 first"})
	if err != nil {
		t.Fatalf("first Patch: %v", err)
	}
	got, err = Patch(got, "## 📝 Daily Log", []string{"- 11:30 second"})
	if err != nil {
		t.Fatalf("second Patch: %v", err)
	}
	want := "## 📝 Daily Log\n\n- 10:00 first\n- 11:30 second\n---\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPatchHeaderBeforeNextHeading(t *testing.T) {
	doc := "## Log\nexisting\n## Next\n"
	got, err := Patch(doc, "## Log", []string{"entry"})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	want := "## Log\nexisting\nentry\n## Next\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPatchHeaderAtDocumentEnd(t *testing.T) {
	doc := "## Log\nexisting\n"
	got, err := Patch(doc, "## Log", []string{"entry"})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	want := "## Log\nexisting\nentry\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPatchSlotsPadsToCount(t *testing.T) {
	doc := "**Top 3:**\n1. [ ]\n2. [ ]\n3. [ ]\n---\n"
	got, err := PatchSlots(doc, "**Top 3:**", StyleCheckboxNumbered, []string{"a", "b"}, 3)
	if err != nil {
		t.Fatalf("PatchSlots: %v", err)
	}
	want := "**Top 3:**\n1. [ ] a\n2. [ ] b\n3. [ ]\n---\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPatchSlotsReplacesWholesale(t *testing.T) {
	doc := "**Top 3:**\n1. [ ] a\n2. [ ] b\n3. [ ]\n---\n"
	got, err := PatchSlots(doc, "**Top 3:**", StyleCheckboxNumbered, []string{"c"}, 3)
	if err != nil {
		t.Fatalf("PatchSlots: %v", err)
	}
	want := "**Top 3:**\n1. [ ] c\n2. [ ]\n3. [ ]\n---\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPatchSlotsTruncatesOverflow(t *testing.T) {
	doc := "**Top 3:**\n1. [ ]\n2. [ ]\n3. [ ]\n"
	got, err := PatchSlots(doc, "**Top 3:**", StyleCheckboxNumbered, []string{"a", "b", "c", "d", "e"}, 3)
	if err != nil {
		t.Fatalf("PatchSlots: %v", err)
	}
	want := "**Top 3:**\n1. [ ] a\n2. [ ] b\n3. [ ] c\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPatchSlotsMarkerNotFound(t *testing.T) {
	doc := "nothing here\n"
	got, err := PatchSlots(doc, "**Top 3:**", StyleCheckboxNumbered, []string{"a"}, 3)
	if !errors.Is(err, apperr.ErrMarkerNotFound) {
		t.Fatalf("err = %v, want ErrMarkerNotFound", err)
	}
	if got != doc {
		t.Errorf("document changed on missing marker")
	}
}

func TestExpandText(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"walk the dog", []string{"walk the dog"}},
		{`["a", "b"]`, []string{"a", "b"}},
		{`["", "  x  "]`, []string{"x"}},
		{"[]", nil},
		{"[not json]", []string{"not json"}},
		{"[  ]", nil},
		{"[broken", []string{"[broken"}},
		{"[1, 2]", []string{"[1, 2]"}},
	}
	for _, c := range cases {
		got := ExpandText(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("ExpandText(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}
