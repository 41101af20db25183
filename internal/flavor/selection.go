// internal/flavor/selection.go
package flavor

// DefaultMaxSelected caps how many tags can be active at once.
const DefaultMaxSelected = 3

// Selection is an ordered set of known tag ids with a size cap. Tags keep
// the order in which they were first selected, so deselecting and
// reselecting a tag puts it back where it was. Methods return a new
// Selection and leave the receiver untouched.
type Selection struct {
	max  int
	tags []string
	// seen holds every id ever selected, in first-selection order.
	seen []string
}

func NewSelection(max int) Selection {
	if max <= 0 {
		max = DefaultMaxSelected
	}
	return Selection{max: max}
}

// SelectionOf builds a selection from ids, applying the same rules as Select.
func SelectionOf(max int, ids ...string) Selection {
	s := NewSelection(max)
	for _, id := range ids {
		s = s.Select(id)
	}
	return s
}

func (s Selection) Tags() []string {
	return append([]string(nil), s.tags...)
}

func (s Selection) Len() int { return len(s.tags) }

func (s Selection) Max() int {
	if s.max <= 0 {
		return DefaultMaxSelected
	}
	return s.max
}

func (s Selection) Full() bool { return len(s.tags) >= s.Max() }

func (s Selection) Contains(id string) bool {
	id = normalize(id)
	for _, t := range s.tags {
		if t == id {
			return true
		}
	}
	return false
}

// Select appends id. Unknown ids, duplicates and selects past the cap are no-ops.
func (s Selection) Select(id string) Selection {
	t, ok := Lookup(id)
	if !ok || s.Contains(t.ID) || s.Full() {
		return s
	}

	seen := s.seen
	rank := indexOf(seen, t.ID)
	if rank < 0 {
		seen = append(append([]string(nil), seen...), t.ID)
		return Selection{max: s.max, tags: append(s.Tags(), t.ID), seen: seen}
	}

	tags := make([]string, 0, len(s.tags)+1)
	inserted := false
	for _, existing := range s.tags {
		if !inserted && indexOf(seen, existing) > rank {
			tags = append(tags, t.ID)
			inserted = true
		}
		tags = append(tags, existing)
	}
	if !inserted {
		tags = append(tags, t.ID)
	}
	return Selection{max: s.max, tags: tags, seen: seen}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Deselect removes id if present.
func (s Selection) Deselect(id string) Selection {
	id = normalize(id)
	out := make([]string, 0, len(s.tags))
	for _, t := range s.tags {
		if t != id {
			out = append(out, t)
		}
	}
	return Selection{max: s.max, tags: out, seen: s.seen}
}

// Toggle deselects a selected id and selects any other.
func (s Selection) Toggle(id string) Selection {
	if s.Contains(id) {
		return s.Deselect(id)
	}
	return s.Select(id)
}
