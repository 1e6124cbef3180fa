package ecs

import "github.com/kengen-engine/kengen/pkg/assert"

// sparseSet maps entity IDs to dense slot indices. Missing keys hold sparseTombstone. The backing
// slice grows on demand and never shrinks, entity IDs are small and recycled so this stays compact.
type sparseSet []int

const (
	sparseCapacity  = 64
	sparseTombstone = -1
)

// newSparseSet creates a new sparse set.
func newSparseSet() sparseSet {
	s := make(sparseSet, sparseCapacity)
	for i := range s {
		s[i] = sparseTombstone
	}
	return s
}

// get returns the slot for a key and whether it exists.
func (s *sparseSet) get(key EntityID) (int, bool) {
	if int(key) >= len(*s) {
		return 0, false
	}

	value := (*s)[key]
	if value == sparseTombstone {
		return 0, false
	}

	return value, true
}

// set stores the slot for a key, growing the backing slice if needed.
func (s *sparseSet) set(key EntityID, value int) {
	assert.That(value >= 0, "sparse set value must be a non-negative slot, got %d", value)

	if int(key) >= len(*s) {
		oldLen := len(*s)
		newLen := max(oldLen*2, int(key)+1)

		grown := make(sparseSet, newLen)
		copy(grown, *s)
		for i := oldLen; i < newLen; i++ {
			grown[i] = sparseTombstone
		}
		*s = grown
	}

	(*s)[key] = value
}

// remove tombstones a key. Returns true if the key existed.
func (s *sparseSet) remove(key EntityID) bool {
	if int(key) >= len(*s) || (*s)[key] == sparseTombstone {
		return false
	}

	(*s)[key] = sparseTombstone
	return true
}
