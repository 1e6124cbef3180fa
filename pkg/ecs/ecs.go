// Package ecs is an Entity-Component-System core. Entities are bare handles, components are plain
// data records stored in dense per-type pools, and systems track the entities whose component
// signature covers their own. A Registry ties these together and defers entity kills to a
// once-per-tick Update.
package ecs

import (
	"github.com/kengen-engine/kengen/pkg/assert"
	"github.com/rotisserie/eris"
)

// AddComponent attaches a component to an entity. If the entity already has a component of this
// type, the value is replaced. The entity joins every system whose requirements it now meets.
func AddComponent[T Component](r *Registry, e Entity, component T) error {
	if err := r.validate(e); err != nil {
		return eris.Wrap(err, "failed to add component")
	}

	cid, err := r.components.register(TypeOf[T]())
	if err != nil {
		return eris.Wrap(err, "failed to add component")
	}

	p, err := getOrCreatePool[T](r, cid)
	if err != nil {
		return err
	}
	p.add(e.ID, component)

	err = r.signatures[e.ID].Set(cid, true)
	assert.That(err == nil, "registered component id %d doesn't fit in a signature", cid)

	r.refreshMembership(e)
	return nil
}

// RemoveComponent detaches a component from an entity. Removing a component the entity doesn't
// have returns ErrComponentNotFound and leaves the Registry untouched. The entity leaves every
// system whose requirements it no longer meets.
func RemoveComponent[T Component](r *Registry, e Entity) error {
	if err := r.validate(e); err != nil {
		return eris.Wrap(err, "failed to remove component")
	}

	p, cid, err := getPool[T](r)
	if err != nil {
		return eris.Wrapf(err, "entity %s", e)
	}
	if err := p.remove(e.ID); err != nil {
		return err
	}

	err = r.signatures[e.ID].Set(cid, false)
	assert.That(err == nil, "registered component id %d doesn't fit in a signature", cid)

	r.refreshMembership(e)
	return nil
}

// HasComponent checks if an entity has a specific component type.
// Returns false if either the entity isn't live or doesn't have the component.
func HasComponent[T Component](r *Registry, e Entity) bool {
	if r.validate(e) != nil {
		return false
	}
	var zero T
	cid, err := r.components.getID(zero.Name())
	if err != nil {
		return false
	}
	return r.signatures[e.ID].Get(cid)
}

// GetComponent returns a copy of an entity's component.
// Returns ErrInvalidEntity or ErrComponentNotFound.
func GetComponent[T Component](r *Registry, e Entity) (T, error) {
	var zero T
	if err := r.validate(e); err != nil {
		return zero, eris.Wrap(err, "failed to get component")
	}

	p, _, err := getPool[T](r)
	if err != nil {
		return zero, eris.Wrapf(err, "entity %s", e)
	}
	return p.get(e.ID)
}

// GetComponentMut returns a pointer to an entity's component stored in its pool. The pointer is
// only valid until the next add or remove of a component of the same type, on any entity, or the
// next Update.
func GetComponentMut[T Component](r *Registry, e Entity) (*T, error) {
	if err := r.validate(e); err != nil {
		return nil, eris.Wrap(err, "failed to get component")
	}

	p, _, err := getPool[T](r)
	if err != nil {
		return nil, eris.Wrapf(err, "entity %s", e)
	}
	return p.getPtr(e.ID)
}

// getPool returns the pool of a registered component type.
func getPool[T Component](r *Registry) (*pool[T], componentID, error) {
	var zero T
	cid, err := r.components.getID(zero.Name())
	if err != nil {
		return nil, 0, err
	}

	abstract := r.pools[cid]
	if abstract == nil {
		// Registered by a system, but never added to an entity.
		return nil, 0, eris.Wrapf(ErrComponentNotFound, "no %s has been added yet", zero.Name())
	}

	p, ok := abstract.(*pool[T])
	if !ok {
		return nil, 0, eris.Errorf("component %s is registered with a different type", zero.Name())
	}
	return p, cid, nil
}

// getOrCreatePool returns the pool for a component ID, creating it on first use.
func getOrCreatePool[T Component](r *Registry, cid componentID) (*pool[T], error) {
	if r.pools[cid] == nil {
		r.pools[cid] = newPool[T]()
	}

	p, ok := r.pools[cid].(*pool[T])
	if !ok {
		return nil, eris.Errorf("component %s is registered with a different type", r.components.name(cid))
	}
	return p, nil
}
