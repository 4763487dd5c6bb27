// Package enumerable provides collections that support both O(1) membership
// checks and dense enumeration.
package enumerable

// Set is a set of comparable keys backed by a map index and a dense slice.
//
// Removal swaps the removed key with the last element, so enumeration order
// is insertion order only until the first removal. Callers must not rely on
// ordering across deletions.
//
// Set is not safe for concurrent use.
type Set[K comparable] struct {
	index map[K]int
	items []K
}

// NewSet returns a set containing the given keys. Duplicate keys are ignored.
func NewSet[K comparable](keys ...K) *Set[K] {
	s := &Set[K]{
		index: make(map[K]int, len(keys)),
		items: make([]K, 0, len(keys)),
	}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts k and reports whether it was not already present.
func (s *Set[K]) Add(k K) bool {
	s.lazyInit()
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, k)
	return true
}

// Remove deletes k and reports whether it was present.
func (s *Set[K]) Remove(k K) bool {
	i, ok := s.index[k]
	if !ok {
		return false
	}
	last := len(s.items) - 1
	if i != last {
		moved := s.items[last]
		s.items[i] = moved
		s.index[moved] = i
	}
	var zero K
	s.items[last] = zero
	s.items = s.items[:last]
	delete(s.index, k)
	return true
}

func (s *Set[K]) Contains(k K) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[k]
	return ok
}

func (s *Set[K]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the key at position i of the current enumeration.
func (s *Set[K]) At(i int) K {
	return s.items[i]
}

// Values returns a copy of the keys in enumeration order.
func (s *Set[K]) Values() []K {
	if s == nil {
		return []K{}
	}
	out := make([]K, len(s.items))
	copy(out, s.items)
	return out
}

// Clone returns an independent copy of the set preserving enumeration order.
func (s *Set[K]) Clone() *Set[K] {
	if s == nil {
		return NewSet[K]()
	}
	return NewSet(s.items...)
}

func (s *Set[K]) lazyInit() {
	if s.index == nil {
		s.index = make(map[K]int)
	}
}
