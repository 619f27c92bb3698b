package labels

import (
	"sort"
)

// Pair is a single label mapping from one label to another.
type Pair struct {
	From uint64
	To   uint64
}

// SortedMapping is an immutable label mapping held as parallel slices of strictly
// increasing keys and their values.  It is safe for concurrent readers.
type SortedMapping struct {
	keys   []uint64
	values []uint64
}

// NewSortedMapping returns a mapping built from the pairs, which need not be sorted.
// A key given more than once, even with the same value, returns a *DuplicateKeyError.
func NewSortedMapping(pairs []Pair) (*SortedMapping, error) {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From < sorted[j].From
	})
	m := &SortedMapping{
		keys:   make([]uint64, len(sorted)),
		values: make([]uint64, len(sorted)),
	}
	for i, p := range sorted {
		if i > 0 && p.From == sorted[i-1].From {
			return nil, &DuplicateKeyError{Key: p.From, First: sorted[i-1].To, Second: p.To}
		}
		m.keys[i] = p.From
		m.values[i] = p.To
	}
	return m, nil
}

// IdentityMapping returns a mapping of each given label to itself.
func IdentityMapping(keys []uint64) (*SortedMapping, error) {
	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{k, k}
	}
	return NewSortedMapping(pairs)
}

// search returns the position of key or -1 if it is not a key of the mapping.
func (m *SortedMapping) search(key uint64) int {
	if m == nil {
		return -1
	}
	i := sort.Search(len(m.keys), func(i int) bool { return m.keys[i] >= key })
	if i < len(m.keys) && m.keys[i] == key {
		return i
	}
	return -1
}

// Lookup returns the value mapped to key.  The second return is false if key is
// not present; a missing key is never resolved to a neighboring entry.
func (m *SortedMapping) Lookup(key uint64) (uint64, bool) {
	i := m.search(key)
	if i < 0 {
		return 0, false
	}
	return m.values[i], true
}

// Len returns the number of mapped labels.
func (m *SortedMapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the sorted source labels.
func (m *SortedMapping) Keys() []uint64 {
	keys := make([]uint64, m.Len())
	if m != nil {
		copy(keys, m.keys)
	}
	return keys
}

// Values returns a copy of the mapped labels in key order.
func (m *SortedMapping) Values() []uint64 {
	values := make([]uint64, m.Len())
	if m != nil {
		copy(values, m.values)
	}
	return values
}

// Range calls f for every pair in ascending key order until f returns false.
func (m *SortedMapping) Range(f func(from, to uint64) bool) {
	for i := 0; i < m.Len(); i++ {
		if !f(m.keys[i], m.values[i]) {
			return
		}
	}
}

// MaxValue returns the largest mapped label or 0 for an empty mapping.
func (m *SortedMapping) MaxValue() uint64 {
	var max uint64
	for i := 0; i < m.Len(); i++ {
		if m.values[i] > max {
			max = m.values[i]
		}
	}
	return max
}

// Compose returns the single mapping equivalent to applying m1 and then m2.
// Keys of m1 whose value is not a key of m2 are left out, so relabeling with the
// composite rejects exactly the labels the two-stage relabel rejects.
func Compose(m1, m2 *SortedMapping) *SortedMapping {
	composite := &SortedMapping{
		keys:   make([]uint64, 0, m1.Len()),
		values: make([]uint64, 0, m1.Len()),
	}
	m1.Range(func(from, mid uint64) bool {
		if to, found := m2.Lookup(mid); found {
			composite.keys = append(composite.keys, from)
			composite.values = append(composite.values, to)
		}
		return true
	})
	return composite
}
