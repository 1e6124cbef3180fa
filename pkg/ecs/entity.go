package ecs

import (
	"fmt"
	"math"

	"github.com/kengen-engine/kengen/pkg/assert"
	"github.com/rotisserie/eris"
)

// EntityID is the numeric part of an entity handle. IDs are recycled after an entity is killed.
type EntityID uint32

// MaxEntityID is the maximum entity ID that can be created.
const MaxEntityID = math.MaxUint32 - 1

// Entity is a handle to a game object. It owns no data, everything attached to it lives in the
// Registry and is looked up with the handle as key. Generation tells apart the entities that have
// held the same ID over time, so a handle kept past a kill never resolves to the ID's next owner.
type Entity struct {
	ID         EntityID
	Generation uint32
}

// String returns the entity as id/generation.
func (e Entity) String() string {
	return fmt.Sprintf("%d/%d", e.ID, e.Generation)
}

// entityManager issues entity IDs and recycles the IDs of killed entities. Free IDs are handed out
// first in, first out, which spreads reuse across IDs instead of hammering the most recently
// killed one.
type entityManager struct {
	nextID      EntityID   // The next ID to allocate if no free IDs are available
	free        []EntityID // Queue of released IDs
	generations []uint32   // ID -> current generation
	alive       []bool     // ID -> whether the ID is currently allocated
	count       int        // Number of live entities
}

// newEntityManager creates an empty entity manager.
func newEntityManager() entityManager {
	return entityManager{
		nextID:      0,
		free:        make([]EntityID, 0),
		generations: make([]uint32, 0),
		alive:       make([]bool, 0),
		count:       0,
	}
}

// new allocates an entity. A released ID is reused with its bumped generation, otherwise the next
// sequential ID is issued at generation 0. It panics with ErrEntityCapacityExceeded when every ID
// up to MaxEntityID is live, in release builds too.
func (em *entityManager) new() Entity {
	var id EntityID
	if len(em.free) > 0 {
		// Pop from the front of the free list (FIFO).
		id = em.free[0]
		em.free = em.free[1:]
	} else {
		if em.nextID > MaxEntityID {
			panic(eris.Wrapf(ErrEntityCapacityExceeded, "all %d entity IDs are in use", uint64(MaxEntityID)+1))
		}
		id = em.nextID
		em.nextID++
		em.generations = append(em.generations, 0)
		em.alive = append(em.alive, false)
	}

	assert.That(!em.alive[id], "entity %d allocated while alive", id)
	em.alive[id] = true
	em.count++

	return Entity{ID: id, Generation: em.generations[id]}
}

// release frees an ID for reuse. Bumping the generation invalidates every outstanding handle.
func (em *entityManager) release(id EntityID) {
	assert.That(int(id) < len(em.alive) && em.alive[id], "released entity %d is not alive", id)

	em.alive[id] = false
	em.generations[id]++
	em.count--
	em.free = append(em.free, id)
}

// isAlive reports whether the handle refers to the current owner of a live ID.
func (em *entityManager) isAlive(e Entity) bool {
	if int(e.ID) >= len(em.alive) {
		return false
	}
	return em.alive[e.ID] && em.generations[e.ID] == e.Generation
}

// entity returns the current live handle for an ID.
func (em *entityManager) entity(id EntityID) (Entity, bool) {
	if int(id) >= len(em.alive) || !em.alive[id] {
		return Entity{}, false
	}
	return Entity{ID: id, Generation: em.generations[id]}, true
}

// capacity returns the number of IDs ever issued. Every live ID is below it.
func (em *entityManager) capacity() int {
	return int(em.nextID)
}
