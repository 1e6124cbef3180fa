package ecs_test

import (
	"testing"

	"github.com/kengen-engine/kengen/pkg/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag_OneToOne(t *testing.T) {
	t.Parallel()

	r := ecs.NewRegistry()
	player := r.CreateEntity()
	other := r.CreateEntity()

	require.NoError(t, r.TagEntity(player, "player"))
	assert.True(t, r.EntityHasTag(player, "player"))

	got, err := r.EntityByTag("player")
	require.NoError(t, err)
	assert.Equal(t, player, got)

	// Reusing the tag moves it.
	require.NoError(t, r.TagEntity(other, "player"))
	assert.False(t, r.EntityHasTag(player, "player"))
	assert.True(t, r.EntityHasTag(other, "player"))

	// Retagging drops the old tag.
	require.NoError(t, r.TagEntity(other, "hero"))
	_, err = r.EntityByTag("player")
	require.ErrorIs(t, err, ecs.ErrTagNotFound)

	r.RemoveEntityTag(other)
	assert.False(t, r.EntityHasTag(other, "hero"))

	require.Error(t, r.TagEntity(player, ""))
}

func TestTag_DroppedOnKill(t *testing.T) {
	t.Parallel()

	r := ecs.NewRegistry()
	e := r.CreateEntity()
	require.NoError(t, r.TagEntity(e, "boss"))
	require.NoError(t, r.GroupEntity(e, "enemies"))

	require.NoError(t, r.KillEntity(e))
	r.Update()

	_, err := r.EntityByTag("boss")
	require.ErrorIs(t, err, ecs.ErrTagNotFound)
	assert.Empty(t, r.EntitiesByGroup("enemies"))

	// The recycled ID starts without a tag or group.
	reused := r.CreateEntity()
	require.Equal(t, e.ID, reused.ID)
	assert.False(t, r.EntityHasTag(reused, "boss"))
	assert.False(t, r.EntityBelongsToGroup(reused, "enemies"))

	require.ErrorIs(t, r.TagEntity(e, "ghost"), ecs.ErrInvalidEntity)
}

func TestGroup_Membership(t *testing.T) {
	t.Parallel()

	r := ecs.NewRegistry()
	a := r.CreateEntity()
	b := r.CreateEntity()
	c := r.CreateEntity()

	require.NoError(t, r.GroupEntity(c, "enemies"))
	require.NoError(t, r.GroupEntity(a, "enemies"))
	require.NoError(t, r.GroupEntity(b, "allies"))

	assert.Equal(t, []ecs.Entity{a, c}, r.EntitiesByGroup("enemies"))
	assert.True(t, r.EntityBelongsToGroup(b, "allies"))
	assert.False(t, r.EntityBelongsToGroup(b, "enemies"))

	// An entity belongs to one group at a time.
	require.NoError(t, r.GroupEntity(a, "allies"))
	assert.Equal(t, []ecs.Entity{c}, r.EntitiesByGroup("enemies"))
	assert.Equal(t, []ecs.Entity{a, b}, r.EntitiesByGroup("allies"))

	r.RemoveEntityGroup(c)
	assert.Empty(t, r.EntitiesByGroup("enemies"))
	assert.Empty(t, r.EntitiesByGroup("unknown"))

	require.Error(t, r.GroupEntity(a, ""))
}
