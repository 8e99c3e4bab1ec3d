// Package scrollspy picks the section a reader is currently looking at.
package scrollspy

// DefaultOffsetRatio places the activation line 30% down the viewport.
const DefaultOffsetRatio = 0.3

// Section is a named block starting at Offset rows from the top of the page.
type Section struct {
	ID     string
	Offset int
}

// Tracker resolves the active section from a scroll position.
type Tracker struct {
	Sections    []Section
	OffsetRatio float64
}

// New returns a tracker using DefaultOffsetRatio.
func New(sections []Section) *Tracker {
	return &Tracker{Sections: sections, OffsetRatio: DefaultOffsetRatio}
}

// Active returns the last section whose offset is at or above the activation
// line (scrollY + viewport*ratio). Before the first section starts, the first
// section is active. Sections are assumed to be in page order.
func (t *Tracker) Active(scrollY, viewport int) string {
	if len(t.Sections) == 0 {
		return ""
	}
	ratio := t.OffsetRatio
	if ratio < 0 {
		ratio = 0
	}
	line := scrollY + int(float64(viewport)*ratio)

	current := t.Sections[0].ID
	for _, s := range t.Sections {
		if s.Offset <= line {
			current = s.ID
		}
	}
	return current
}

// Offset returns the offset of id and whether it exists.
func (t *Tracker) Offset(id string) (int, bool) {
	for _, s := range t.Sections {
		if s.ID == id {
			return s.Offset, true
		}
	}
	return 0, false
}

// Index returns the position of id in Sections, or -1.
func (t *Tracker) Index(id string) int {
	for i, s := range t.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}
