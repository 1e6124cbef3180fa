package ecs

import (
	"reflect"
	"slices"

	"github.com/kengen-engine/kengen/pkg/assert"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Registry is the single owner of all ECS state: entity IDs, per-entity signatures, component
// pools, systems, tags and groups. It is not safe for concurrent use; one game loop goroutine
// performs every mutation and runs every system.
//
// Mutations apply immediately except for kills. KillEntity only queues the entity, and Update
// applies the queued kills once per tick so that systems iterating their members during the tick
// never see an entity vanish underneath them.
type Registry struct {
	entities   entityManager
	signatures []Signature // Entity ID -> component signature
	components componentManager
	pools      []abstractPool // Component ID -> pool, nil until the first AddComponent of that type

	systems     map[string]*System
	systemOrder []*System // Systems in registration order

	pendingAdd  []Entity              // Entities created since the last Update, in creation order
	pendingKill []Entity              // Entities to kill on the next Update, in request order
	addQueued   map[EntityID]struct{} // IDs in pendingAdd
	killQueued  map[EntityID]struct{} // IDs in pendingKill

	tags   tagIndex
	groups groupIndex

	logger zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger the Registry reports flushes to. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entities:    newEntityManager(),
		signatures:  make([]Signature, 0),
		components:  newComponentManager(),
		pools:       make([]abstractPool, MaxComponents),
		systems:     make(map[string]*System),
		systemOrder: make([]*System, 0),
		pendingAdd:  make([]Entity, 0),
		pendingKill: make([]Entity, 0),
		addQueued:   make(map[EntityID]struct{}),
		killQueued:  make(map[EntityID]struct{}),
		tags:        newTagIndex(),
		groups:      newGroupIndex(),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// -------------------------------------------------------------------------------------------------
// Entity management
// -------------------------------------------------------------------------------------------------

// CreateEntity allocates an entity with an empty signature. Components can be attached right
// away, but systems only pick the entity up at the next Update. It panics with
// ErrEntityCapacityExceeded if every entity ID is live.
func (r *Registry) CreateEntity() Entity {
	e := r.entities.new()

	for int(e.ID) >= len(r.signatures) {
		r.signatures = append(r.signatures, Signature{})
	}
	r.signatures[e.ID].Reset()

	r.pendingAdd = append(r.pendingAdd, e)
	r.addQueued[e.ID] = struct{}{}

	return e
}

// KillEntity queues the entity for destruction at the next Update. The entity stays live, with all
// its components and system memberships, until then. Killing an entity twice in a tick is a no-op.
func (r *Registry) KillEntity(e Entity) error {
	if err := r.validate(e); err != nil {
		return eris.Wrap(err, "failed to kill entity")
	}

	if _, queued := r.killQueued[e.ID]; queued {
		return nil
	}
	r.pendingKill = append(r.pendingKill, e)
	r.killQueued[e.ID] = struct{}{}

	return nil
}

// Alive reports whether the handle refers to a live entity. Entities queued for a kill are alive
// until the next Update.
func (r *Registry) Alive(e Entity) bool {
	return r.entities.isAlive(e)
}

// NumEntities returns the number of live entities.
func (r *Registry) NumEntities() int {
	return r.entities.count
}

// Entities returns every live entity ordered by ID.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, 0, r.entities.count)
	for id := range r.entities.capacity() {
		if e, ok := r.entities.entity(EntityID(id)); ok {
			out = append(out, e)
		}
	}
	return out
}

// Signature returns a copy of the entity's component signature.
func (r *Registry) Signature(e Entity) (Signature, error) {
	if err := r.validate(e); err != nil {
		return Signature{}, err
	}
	return r.signatures[e.ID].Clone(), nil
}

// ComponentTypes returns a map of registered component names to their Go types.
func (r *Registry) ComponentTypes() map[string]reflect.Type {
	types := make(map[string]reflect.Type, len(r.components.types))
	for name, typ := range r.components.types {
		types[name] = typ
	}
	return types
}

// validate returns ErrInvalidEntity unless the handle refers to a live entity.
func (r *Registry) validate(e Entity) error {
	if !r.entities.isAlive(e) {
		return eris.Wrapf(ErrInvalidEntity, "entity %s", e)
	}
	return nil
}

// -------------------------------------------------------------------------------------------------
// System management
// -------------------------------------------------------------------------------------------------

// AddSystem registers a system that matches entities carrying at least the required components.
// Registering assigns IDs to component types that haven't been seen yet.
//
// Every live entity that has already been through an Update is matched against the new system
// immediately. Entities created since the last Update are matched at the next Update, like they
// are for every other system.
func (r *Registry) AddSystem(name string, required ...ComponentType) (*System, error) {
	if name == "" {
		return nil, eris.New("system name cannot be empty")
	}
	if _, exists := r.systems[name]; exists {
		return nil, eris.Wrapf(ErrSystemExists, "system %s", name)
	}

	var signature Signature
	for _, ct := range required {
		cid, err := r.components.register(ct)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to register component for system %s", name)
		}
		err = signature.Set(cid, true)
		assert.That(err == nil, "registered component id %d doesn't fit in a signature", cid)
	}

	system := newSystem(name, signature)
	for id := range r.entities.capacity() {
		e, ok := r.entities.entity(EntityID(id))
		if !ok {
			continue
		}
		if _, pending := r.addQueued[e.ID]; pending {
			continue
		}
		if system.matches(r.signatures[e.ID]) {
			system.add(e)
		}
	}

	r.systems[name] = system
	r.systemOrder = append(r.systemOrder, system)

	return system, nil
}

// GetSystem returns the system registered under name.
func (r *Registry) GetSystem(name string) (*System, error) {
	system, exists := r.systems[name]
	if !exists {
		return nil, eris.Wrapf(ErrSystemNotFound, "system %s", name)
	}
	return system, nil
}

// HasSystem reports whether a system is registered under name.
func (r *Registry) HasSystem(name string) bool {
	_, exists := r.systems[name]
	return exists
}

// RemoveSystem unregisters a system. The removed System stops receiving membership updates.
func (r *Registry) RemoveSystem(name string) error {
	system, exists := r.systems[name]
	if !exists {
		return eris.Wrapf(ErrSystemNotFound, "system %s", name)
	}
	delete(r.systems, name)
	r.systemOrder = slices.DeleteFunc(r.systemOrder, func(s *System) bool { return s == system })
	return nil
}

// Systems returns the registered systems in registration order.
func (r *Registry) Systems() []*System {
	return slices.Clone(r.systemOrder)
}

// refreshMembership re-evaluates an entity against every system after its signature changed.
// Entities still waiting for their first Update are skipped; Update matches them.
func (r *Registry) refreshMembership(e Entity) {
	if _, pending := r.addQueued[e.ID]; pending {
		return
	}
	r.matchSystems(e)
}

// matchSystems adds the entity to every system it satisfies and removes it from the rest.
func (r *Registry) matchSystems(e Entity) {
	sig := r.signatures[e.ID]
	for _, system := range r.systemOrder {
		if system.matches(sig) {
			system.add(e)
		} else {
			system.remove(e.ID)
		}
	}
}

// -------------------------------------------------------------------------------------------------
// Flush
// -------------------------------------------------------------------------------------------------

// Update applies the work deferred during the tick. It must be called once per tick after all of
// the tick's mutations and before systems read their members.
//
// Queued kills are applied first: the entity's components are removed from their pools, it leaves
// every system, its tag and group are dropped, its signature is reset and its ID is released.
// Entities created during the tick are then matched against every system in creation order.
// Entities both created and killed during the tick never reach a system.
func (r *Registry) Update() {
	killed := len(r.pendingKill)
	for _, e := range r.pendingKill {
		r.destroy(e)
	}

	added := 0
	for _, e := range r.pendingAdd {
		if !r.entities.isAlive(e) {
			continue
		}
		r.matchSystems(e)
		added++
	}

	r.pendingKill = r.pendingKill[:0]
	r.pendingAdd = r.pendingAdd[:0]
	clear(r.killQueued)
	clear(r.addQueued)

	if killed > 0 || added > 0 {
		r.logger.Debug().
			Int("killed", killed).
			Int("added", added).
			Int("alive", r.entities.count).
			Msg("registry flushed")
	}
}

// destroy removes every trace of an entity and releases its ID.
func (r *Registry) destroy(e Entity) {
	assert.That(r.entities.isAlive(e), "entity %s queued for kill is not alive", e)

	sig := &r.signatures[e.ID]
	for cid := range sig.Bits() {
		p := r.pools[cid]
		assert.That(p != nil, "signature bit %d set without a pool", cid)
		err := p.remove(e.ID)
		assert.That(err == nil, "entity %s missing from pool %s", e, p.name())
	}

	for _, system := range r.systemOrder {
		system.remove(e.ID)
	}

	r.tags.remove(e)
	r.groups.remove(e)

	sig.Reset()
	r.entities.release(e.ID)
}
