package note

// Section binds a literal marker to a render style and an optional slot
// bound. Markers are unique within a note; the section table is static
// configuration.
type Section struct {
	Marker string
	Format Style
	Slots  int // 0 = unbounded
}

// Bounded reports whether the section has a fixed slot count.
func (s Section) Bounded() bool { return s.Slots > 0 }
