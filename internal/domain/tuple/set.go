package tuple

// Set deduplicates tuples by Key while keeping first-seen order.
// It is not safe for concurrent use.
type Set struct {
	index map[Key]int
	items []*Tuple
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{index: make(map[Key]int)}
}

// Add inserts t unless an equal tuple is present. It returns the stored tuple
// and whether t was added.
func (s *Set) Add(t *Tuple) (*Tuple, bool) {
	k := t.Key()
	if i, ok := s.index[k]; ok {
		return s.items[i], false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, t)
	return t, true
}

// Get returns the stored tuple equal to key.
func (s *Set) Get(k Key) (*Tuple, bool) {
	i, ok := s.index[k]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

// Len returns the number of distinct tuples.
func (s *Set) Len() int { return len(s.items) }

// Items returns the tuples in insertion order. The slice must not be modified.
func (s *Set) Items() []*Tuple { return s.items }
