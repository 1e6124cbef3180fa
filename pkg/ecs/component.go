package ecs

import (
	"reflect"

	"github.com/kengen-engine/kengen/pkg/assert"
	"github.com/rotisserie/eris"
)

// Component is the interface that all components must implement.
// Components are plain data records attached to entities.
type Component interface { //nolint:iface // We may add more methods in the future.
	// Name returns a unique string identifier for the component type. Two Go types returning the
	// same name can't be registered in the same Registry.
	Name() string
}

// componentID is the signature bit assigned to a component type.
type componentID = uint32

// ComponentType describes a component type without a value. It is how systems name the
// components they require.
type ComponentType struct {
	name string
	typ  reflect.Type
}

// TypeOf returns the ComponentType of T.
func TypeOf[T Component]() ComponentType {
	var zero T
	return ComponentType{name: zero.Name(), typ: reflect.TypeFor[T]()}
}

// Name returns the component name.
func (c ComponentType) Name() string {
	return c.name
}

// componentManager assigns component type IDs in first-use order. IDs double as signature bits, so
// they are never reassigned and registration stops at MaxComponents.
type componentManager struct {
	nextID  componentID             // The next available component ID
	catalog map[string]componentID  // Component name -> component ID
	names   []string                // Component ID -> component name
	types   map[string]reflect.Type // Component name -> Go type
}

// newComponentManager creates a new component manager.
func newComponentManager() componentManager {
	return componentManager{
		nextID:  0,
		catalog: make(map[string]componentID),
		names:   make([]string, 0, MaxComponents),
		types:   make(map[string]reflect.Type),
	}
}

// register returns the ID of a component type, assigning the next one on first use.
func (cm *componentManager) register(ct ComponentType) (componentID, error) {
	if ct.name == "" {
		return 0, eris.New("component name cannot be empty")
	}

	if cid, exists := cm.catalog[ct.name]; exists {
		if registered := cm.types[ct.name]; ct.typ != nil && registered != ct.typ {
			return 0, eris.Errorf("component name %s is already used by %s", ct.name, registered)
		}
		return cid, nil
	}

	if cm.nextID >= MaxComponents {
		return 0, eris.Wrapf(ErrComponentCapacityExceeded,
			"cannot register component %s: limit of %d component types reached", ct.name, MaxComponents)
	}

	cid := cm.nextID
	cm.catalog[ct.name] = cid
	cm.names = append(cm.names, ct.name)
	cm.types[ct.name] = ct.typ
	cm.nextID++
	assert.That(int(cm.nextID) == len(cm.names), "component id doesn't match number of components")

	return cid, nil
}

// getID returns a component's ID given a name.
func (cm *componentManager) getID(name string) (componentID, error) {
	cid, exists := cm.catalog[name]
	if !exists {
		return 0, eris.Wrapf(ErrComponentNotFound, "component %s is not registered", name)
	}
	return cid, nil
}

// name returns the name registered under an ID.
func (cm *componentManager) name(cid componentID) string {
	assert.That(int(cid) < len(cm.names), "component id %d is not registered", cid)
	return cm.names[cid]
}
