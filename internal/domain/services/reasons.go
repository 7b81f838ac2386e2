package services

// ReasonSet collects detection reasons in first-seen order, dropping
// repeats of an identical string.
type ReasonSet struct {
	seen  map[string]struct{}
	order []string
}

// NewReasonSet creates an empty reason set
func NewReasonSet() *ReasonSet {
	return &ReasonSet{seen: make(map[string]struct{})}
}

// Add inserts reason unless it is already present. It reports whether
// the reason was new.
func (s *ReasonSet) Add(reason string) bool {
	if _, ok := s.seen[reason]; ok {
		return false
	}
	s.seen[reason] = struct{}{}
	s.order = append(s.order, reason)
	return true
}

// Len returns the number of distinct reasons
func (s *ReasonSet) Len() int {
	return len(s.order)
}

// List returns a copy of the reasons in insertion order. It never returns nil.
func (s *ReasonSet) List() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
