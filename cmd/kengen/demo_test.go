package main

import (
	"context"
	"testing"
	"time"

	"github.com/kengen-engine/kengen/pkg/ecs"
	"github.com/kengen-engine/kengen/pkg/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemo_KeepsPopulation(t *testing.T) {
	t.Parallel()

	g, err := game.New(game.Options{})
	require.NoError(t, err)
	require.NoError(t, setupDemo(g, 8))

	r := g.Registry()
	assert.Equal(t, 8, r.NumEntities())

	player, err := r.EntityByTag(playerTag)
	require.NoError(t, err)

	g.Start()
	start, err := ecs.GetComponent[Position](r, player)
	require.NoError(t, err)

	// Every particle lives under maxLifetime, so these steps expire and respawn all of them.
	const dt = 500 * time.Millisecond
	for range 2 * int(maxLifetime/dt) {
		running, err := g.Step(context.Background(), dt)
		require.NoError(t, err)
		require.True(t, running)
		// Kills queued during the tick are already replaced.
		require.Equal(t, 8, r.NumEntities()-pendingKills(t, r))
	}

	assert.True(t, r.Alive(player), "the player never expires")
	end, err := ecs.GetComponent[Position](r, player)
	require.NoError(t, err)
	assert.Greater(t, end.X, start.X)

	// Particles waiting for their kill are still grouped.
	assert.Len(t, r.EntitiesByGroup(particleGroup), r.NumEntities()-1)
}

// pendingKills counts the entities whose lifetime ran out but are still alive until the next flush.
func pendingKills(t *testing.T, r *ecs.Registry) int {
	t.Helper()

	n := 0
	for _, e := range r.Entities() {
		life, err := ecs.GetComponent[Lifetime](r, e)
		if err == nil && life.Remaining <= 0 {
			n++
		}
	}
	return n
}

func TestMoveAll(t *testing.T) {
	t.Parallel()

	r := ecs.NewRegistry()
	e := r.CreateEntity()
	require.NoError(t, ecs.AddComponent(r, e, Position{X: 1}))
	require.NoError(t, ecs.AddComponent(r, e, Velocity{X: 2, Y: 4}))

	require.NoError(t, moveAll(r, []ecs.Entity{e}, 500*time.Millisecond))

	pos, err := ecs.GetComponent[Position](r, e)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, pos.X, 1e-9)
	assert.InDelta(t, 2.0, pos.Y, 1e-9)
}

func TestExpireAll(t *testing.T) {
	t.Parallel()

	r := ecs.NewRegistry()
	short := r.CreateEntity()
	long := r.CreateEntity()
	require.NoError(t, ecs.AddComponent(r, short, Lifetime{Remaining: time.Second}))
	require.NoError(t, ecs.AddComponent(r, long, Lifetime{Remaining: time.Hour}))
	r.Update()

	entities := []ecs.Entity{short, long}
	require.NoError(t, expireAll(r, entities, time.Second))
	assert.Equal(t, []ecs.Entity{short}, expired(r, entities))

	// Expired entities aren't killed twice.
	require.NoError(t, expireAll(r, entities, time.Second))

	r.Update()
	assert.False(t, r.Alive(short))
	assert.True(t, r.Alive(long))
}
