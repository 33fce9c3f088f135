// Package collection provides the insertion-ordered Set and OrderedMap
// containers that foldkit walks and produces. Go's built-in maps have no
// iteration order, so these types keep one.
//
// Elements and keys must be comparable; adding an uncomparable value panics
// exactly as a Go map would.
package collection

import (
	"iter"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

// Set is an insertion-ordered set of unique values.
// The zero value is not usable; call NewSet.
type Set struct {
	set *linkedhashset.Set
}

// NewSet returns a set holding vs in first-seen order.
func NewSet(vs ...any) *Set {
	return &Set{set: linkedhashset.New(vs...)}
}

// Add inserts v if absent and returns the set.
func (s *Set) Add(v any) *Set {
	s.set.Add(v)
	return s
}

// Has reports whether v is in the set.
func (s *Set) Has(v any) bool {
	return s.set.Contains(v)
}

// Delete removes v and reports whether it was present.
func (s *Set) Delete(v any) bool {
	if !s.set.Contains(v) {
		return false
	}
	s.set.Remove(v)
	return true
}

// Len returns the number of elements.
func (s *Set) Len() int { return s.set.Size() }

// Values returns a copy of the elements in insertion order.
func (s *Set) Values() []any {
	return s.set.Values()
}

// All yields the elements in insertion order.
func (s *Set) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		it := s.set.Iterator()
		for it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
	}
}
