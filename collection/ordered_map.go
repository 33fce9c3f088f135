package collection

import (
	"iter"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Pair is a single key/value entry. Transform targets that hold keyed
// values (records and ordered maps) accept Pairs as items.
type Pair struct {
	Key   any
	Value any
}

// OrderedMap is a map that remembers key insertion order.
// The zero value is not usable; call NewOrderedMap.
type OrderedMap struct {
	m *linkedhashmap.Map
}

// NewOrderedMap returns a map holding pairs in order. Later pairs overwrite
// earlier ones with the same key without moving them.
func NewOrderedMap(pairs ...Pair) *OrderedMap {
	m := &OrderedMap{m: linkedhashmap.New()}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Set stores v under k and returns the map. An existing key keeps its
// position.
func (m *OrderedMap) Set(k, v any) *OrderedMap {
	m.m.Put(k, v)
	return m
}

// Get returns the value stored under k.
func (m *OrderedMap) Get(k any) (any, bool) {
	return m.m.Get(k)
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return m.m.Size() }

// Keys returns a copy of the keys in insertion order.
func (m *OrderedMap) Keys() []any {
	return m.m.Keys()
}

// Entries returns the entries in insertion order.
func (m *OrderedMap) Entries() []Pair {
	out := make([]Pair, 0, m.m.Size())
	for k, v := range m.All() {
		out = append(out, Pair{Key: k, Value: v})
	}
	return out
}

// All yields key/value pairs in insertion order.
func (m *OrderedMap) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		it := m.m.Iterator()
		for it.Next() {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
	}
}
