package ecs

import (
	"github.com/kengen-engine/kengen/pkg/assert"
	"github.com/rotisserie/eris"
)

// abstractPool is the type-erased view of a pool[T] that the Registry keeps per component ID.
// Typed access goes through getPool with the caller's static type.
type abstractPool interface {
	name() string
	len() int
	isEmpty() bool
	has(eid EntityID) bool
	remove(eid EntityID) error
	getAbstract(eid EntityID) (Component, bool)
}

var _ abstractPool = &pool[Component]{}

// pool stores every instance of one component type in a dense slice. rows maps an entity ID to
// its slot and entities maps a slot back to the entity ID. A pool never has gaps: removals move
// the last element into the freed slot.
type pool[T Component] struct {
	compName   string     // The name of the component stored in this pool
	components []T        // Slot -> component value
	entities   []EntityID // Slot -> entity ID
	rows       sparseSet  // Entity ID -> slot
}

// newPool creates an empty pool for T.
func newPool[T Component]() *pool[T] {
	var zero T
	const initialCapacity = 16
	return &pool[T]{
		compName:   zero.Name(),
		components: make([]T, 0, initialCapacity),
		entities:   make([]EntityID, 0, initialCapacity),
		rows:       newSparseSet(),
	}
}

// name returns the name of the component type.
func (p *pool[T]) name() string {
	return p.compName
}

// len returns the number of stored components.
func (p *pool[T]) len() int {
	return len(p.components)
}

// isEmpty reports whether the pool holds no components.
func (p *pool[T]) isEmpty() bool {
	return len(p.components) == 0
}

// has reports whether the entity has a slot in the pool.
func (p *pool[T]) has(eid EntityID) bool {
	_, ok := p.rows.get(eid)
	return ok
}

// add stores the entity's component. Adding to an entity that already has a slot overwrites the
// value in place, an entity never owns two slots.
func (p *pool[T]) add(eid EntityID, component T) {
	if row, ok := p.rows.get(eid); ok {
		p.components[row] = component
		return
	}

	p.components = append(p.components, component)
	p.entities = append(p.entities, eid)
	p.rows.set(eid, len(p.components)-1)
	assert.That(len(p.components) == len(p.entities), "pool components length doesn't match entities")
}

// get returns a copy of the entity's component.
func (p *pool[T]) get(eid EntityID) (T, error) {
	row, ok := p.rows.get(eid)
	if !ok {
		var zero T
		return zero, eris.Wrapf(ErrComponentNotFound, "entity %d has no %s", eid, p.compName)
	}
	return p.components[row], nil
}

// getPtr returns a pointer into the pool. The pointer is valid until the next add or remove on
// this pool, either of which may move or reallocate the slot.
func (p *pool[T]) getPtr(eid EntityID) (*T, error) {
	row, ok := p.rows.get(eid)
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotFound, "entity %d has no %s", eid, p.compName)
	}
	return &p.components[row], nil
}

// getAbstract returns the entity's component boxed as a Component. Prefer get when the type is
// known since boxing allocates.
func (p *pool[T]) getAbstract(eid EntityID) (Component, bool) {
	row, ok := p.rows.get(eid)
	if !ok {
		return nil, false
	}
	return p.components[row], true
}

// remove deletes the entity's component by swapping the last slot into its place.
func (p *pool[T]) remove(eid EntityID) error {
	row, ok := p.rows.get(eid)
	if !ok {
		return eris.Wrapf(ErrComponentNotFound, "entity %d has no %s", eid, p.compName)
	}

	lastIndex := len(p.components) - 1

	// Swap the component to remove with the last component in the array, then truncate.
	var zero T
	p.components[row] = p.components[lastIndex]
	p.components[lastIndex] = zero // Drop references held by the removed value
	p.components = p.components[:lastIndex]

	p.entities[row] = p.entities[lastIndex]
	p.entities = p.entities[:lastIndex]

	ok = p.rows.remove(eid)
	assert.That(ok, "entity isn't removed from sparse set")

	// If the entity was in the last slot nothing was swapped.
	if row == lastIndex {
		return nil
	}

	movedID := p.entities[row]
	p.rows.set(movedID, row)
	return nil
}
