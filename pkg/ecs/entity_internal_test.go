package ecs

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityManager_New(t *testing.T) {
	t.Parallel()

	em := newEntityManager()

	e0 := em.new()
	e1 := em.new()
	assert.Equal(t, Entity{ID: 0, Generation: 0}, e0)
	assert.Equal(t, Entity{ID: 1, Generation: 0}, e1)
	assert.True(t, em.isAlive(e0))
	assert.True(t, em.isAlive(e1))
	assert.Equal(t, 2, em.count)
	assert.Equal(t, 2, em.capacity())
}

func TestEntityManager_RecycleFIFO(t *testing.T) {
	t.Parallel()

	em := newEntityManager()
	a := em.new()
	b := em.new()
	c := em.new()

	em.release(b.ID)
	em.release(a.ID)
	assert.Equal(t, 1, em.count)

	// Released IDs come back in release order with a bumped generation.
	first := em.new()
	second := em.new()
	assert.Equal(t, Entity{ID: b.ID, Generation: 1}, first)
	assert.Equal(t, Entity{ID: a.ID, Generation: 1}, second)

	// The queue is empty, fresh IDs continue from the counter.
	fresh := em.new()
	assert.Equal(t, Entity{ID: 3, Generation: 0}, fresh)
	assert.True(t, em.isAlive(c))
}

func TestEntityManager_StaleHandle(t *testing.T) {
	t.Parallel()

	em := newEntityManager()
	old := em.new()
	em.release(old.ID)
	assert.False(t, em.isAlive(old))

	reused := em.new()
	require.Equal(t, old.ID, reused.ID)
	assert.True(t, em.isAlive(reused))
	assert.False(t, em.isAlive(old), "stale handle must not resolve to the new owner")

	current, ok := em.entity(old.ID)
	require.True(t, ok)
	assert.Equal(t, reused, current)
}

func TestEntityManager_NeverAllocated(t *testing.T) {
	t.Parallel()

	em := newEntityManager()
	assert.False(t, em.isAlive(Entity{ID: 0}))
	assert.False(t, em.isAlive(Entity{ID: 1000}))

	_, ok := em.entity(5)
	assert.False(t, ok)
}

func TestEntityManager_ReleaseDeadPanics(t *testing.T) {
	t.Parallel()

	em := newEntityManager()
	e := em.new()
	em.release(e.ID)

	assert.Panics(t, func() { em.release(e.ID) })
	assert.Panics(t, func() { em.release(42) })
}

func TestEntityManager_IDSpaceExhausted(t *testing.T) {
	t.Parallel()

	em := newEntityManager()
	em.nextID = MaxEntityID + 1

	defer func() {
		r := recover()
		require.NotNil(t, r, "allocating past MaxEntityID must panic")
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, eris.Is(err, ErrEntityCapacityExceeded))
		assert.Equal(t, EntityID(MaxEntityID+1), em.nextID, "the counter must not wrap")
	}()
	em.new()
}

func TestEntityManager_ExhaustedReusesFreeIDs(t *testing.T) {
	t.Parallel()

	em := newEntityManager()
	e := em.new()
	em.release(e.ID)

	// Free IDs are still handed out once the counter is spent.
	em.nextID = MaxEntityID + 1
	reused := em.new()
	assert.Equal(t, Entity{ID: e.ID, Generation: 1}, reused)
}
