package ecs

import (
	"slices"

	"github.com/kengen-engine/kengen/pkg/assert"
)

// System is the set of live entities that carry at least the components in its signature. The
// Registry owns membership: it adds and removes entities as their components change and as kills
// are flushed. Game logic only reads from a System.
type System struct {
	name      string    // The name the system is registered under
	signature Signature // Required components, fixed at registration
	entities  []Entity  // Matching entities, no duplicates
	rows      sparseSet // Entity ID -> index in entities
}

// newSystem creates a system with no members.
func newSystem(name string, signature Signature) *System {
	return &System{
		name:      name,
		signature: signature,
		entities:  make([]Entity, 0),
		rows:      newSparseSet(),
	}
}

// Name returns the name the system is registered under.
func (s *System) Name() string {
	return s.name
}

// Signature returns the components the system requires.
func (s *System) Signature() Signature {
	return s.signature.Clone()
}

// Entities returns the matching entities. The returned slice is a copy, so callers may keep
// iterating it while mutating the Registry.
func (s *System) Entities() []Entity {
	return slices.Clone(s.entities)
}

// Len returns the number of matching entities.
func (s *System) Len() int {
	return len(s.entities)
}

// Contains reports whether the entity is a member.
func (s *System) Contains(e Entity) bool {
	row, ok := s.rows.get(e.ID)
	return ok && s.entities[row] == e
}

// matches reports whether an entity signature satisfies the system's requirements.
func (s *System) matches(sig Signature) bool {
	return sig.Contains(s.signature)
}

// add appends the entity unless it is already a member.
func (s *System) add(e Entity) {
	if _, ok := s.rows.get(e.ID); ok {
		return
	}
	s.entities = append(s.entities, e)
	s.rows.set(e.ID, len(s.entities)-1)
}

// remove drops the entity with the given ID by swapping the last member into its place. Returns
// false if it wasn't a member.
func (s *System) remove(eid EntityID) bool {
	row, ok := s.rows.get(eid)
	if !ok {
		return false
	}

	lastIndex := len(s.entities) - 1
	s.entities[row] = s.entities[lastIndex]
	s.entities = s.entities[:lastIndex]

	ok = s.rows.remove(eid)
	assert.That(ok, "system member isn't removed from sparse set")

	if row != lastIndex {
		s.rows.set(s.entities[row].ID, row)
	}
	return true
}
