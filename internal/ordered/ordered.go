// Package ordered provides an id-keyed map that iterates in insertion order.
//
// Projection state (particles, springs, nodes, edges, materials) must
// serialize in the order entities were first created, which Go's built-in
// map cannot guarantee. Each run owns its own Map; nothing is shared.
package ordered

// Map is an insertion-ordered map. The zero value is ready to use.
//
// Replacing the value of an existing key keeps its original position.
type Map[K comparable, V any] struct {
	index map[K]int
	keys  []K
	vals  []V
}

// Set stores v under k. A new key is appended; an existing key is
// overwritten in place.
func (m *Map[K, V]) Set(k K, v V) {
	if m.index == nil {
		m.index = make(map[K]int)
	}
	if i, ok := m.index[k]; ok {
		m.vals[i] = v
		return
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

// Get returns the value for k and whether it was present.
func (m *Map[K, V]) Get(k K) (V, bool) {
	if i, ok := m.index[k]; ok {
		return m.vals[i], true
	}
	var zero V
	return zero, false
}

// Has reports whether k is present.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.index[k]
	return ok
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Map[K, V]) Keys() []K {
	return append([]K(nil), m.keys...)
}

// Values returns the values in insertion order. The slice is a copy.
func (m *Map[K, V]) Values() []V {
	return append([]V(nil), m.vals...)
}

// Each calls fn for every entry in insertion order.
func (m *Map[K, V]) Each(fn func(k K, v V)) {
	for i, k := range m.keys {
		fn(k, m.vals[i])
	}
}
