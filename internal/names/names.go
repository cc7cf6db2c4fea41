// Package names provides the name normalization and insertion-ordered maps
// shared by the schema model and the version differ.
package names

import (
	"iter"
	"strings"
)

// Key normalizes a schema name for case-insensitive lookup.
// Every insert and lookup site goes through Key.
func Key(name string) string {
	return strings.ToLower(name)
}

// Ordered is an insertion-ordered map whose keys pass through a normalization
// function on every insert and lookup. Iteration follows first-insert order.
// The zero value is an empty map with identity normalization.
type Ordered[K comparable, V any] struct {
	normalize func(K) K
	index     map[K]int
	keys      []K
	values    []V
}

// Map is an ordered map keyed by case-insensitive schema names.
type Map[V any] = Ordered[string, V]

// NewOrdered returns an empty ordered map using normalize for key identity.
func NewOrdered[K comparable, V any](normalize func(K) K) *Ordered[K, V] {
	return &Ordered[K, V]{normalize: normalize, index: make(map[K]int)}
}

// NewMap returns an empty case-insensitive ordered map.
func NewMap[V any]() *Map[V] {
	return NewOrdered[string, V](Key)
}

func (m *Ordered[K, V]) key(k K) K {
	if m.normalize == nil {
		return k
	}
	return m.normalize(k)
}

// Get returns the value stored under k.
func (m *Ordered[K, V]) Get(k K) (V, bool) {
	var zero V
	if m == nil || m.index == nil {
		return zero, false
	}
	i, ok := m.index[m.key(k)]
	if !ok {
		return zero, false
	}
	return m.values[i], true
}

// Has reports whether k is present.
func (m *Ordered[K, V]) Has(k K) bool {
	_, ok := m.Get(k)
	return ok
}

// Set stores v under k. Replacing an existing key keeps its original position.
func (m *Ordered[K, V]) Set(k K, v V) {
	if m.index == nil {
		m.index = make(map[K]int)
	}
	nk := m.key(k)
	if i, ok := m.index[nk]; ok {
		m.values[i] = v
		return
	}
	m.index[nk] = len(m.keys)
	m.keys = append(m.keys, nk)
	m.values = append(m.values, v)
}

// Delete removes k and reports whether it was present.
func (m *Ordered[K, V]) Delete(k K) bool {
	if m == nil || m.index == nil {
		return false
	}
	nk := m.key(k)
	i, ok := m.index[nk]
	if !ok {
		return false
	}
	delete(m.index, nk)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	return true
}

// Len returns the number of entries.
func (m *Ordered[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the normalized keys in insertion order.
func (m *Ordered[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	return append([]K(nil), m.keys...)
}

// All yields normalized keys and values in insertion order.
// The map must not be mutated during iteration.
func (m *Ordered[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m == nil {
			return
		}
		for i, k := range m.keys {
			if !yield(k, m.values[i]) {
				return
			}
		}
	}
}

// Values yields values in insertion order.
func (m *Ordered[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		if m == nil {
			return
		}
		for _, v := range m.values {
			if !yield(v) {
				return
			}
		}
	}
}

// Clone returns a shallow copy preserving order and normalization.
func (m *Ordered[K, V]) Clone() *Ordered[K, V] {
	if m == nil {
		return nil
	}
	out := &Ordered[K, V]{
		normalize: m.normalize,
		index:     make(map[K]int, len(m.keys)),
		keys:      append([]K(nil), m.keys...),
		values:    append([]V(nil), m.values...),
	}
	for i, k := range out.keys {
		out.index[k] = i
	}
	return out
}
