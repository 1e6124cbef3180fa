package ecs

import (
	"testing"

	. "github.com/kengen-engine/kengen/pkg/ecs/internal/testutils"
	"github.com/kengen-engine/kengen/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requirePoolDense checks that every slot round-trips through both mappings and that the pool
// holds exactly the expected entities.
func requirePoolDense[T Component](t *testing.T, p *pool[T], expected map[EntityID]T) {
	t.Helper()

	require.Equal(t, len(expected), p.len())
	require.Len(t, p.entities, p.len())

	for slot, eid := range p.entities {
		row, ok := p.rows.get(eid)
		require.True(t, ok, "slot %d entity %d has no row", slot, eid)
		require.Equal(t, slot, row, "slot -> entity -> slot must round-trip")
	}
	for eid, want := range expected {
		got, err := p.get(eid)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestPool_AddGet(t *testing.T) {
	t.Parallel()

	p := newPool[Health]()
	assert.True(t, p.isEmpty())
	assert.Equal(t, "Health", p.name())

	p.add(3, Health{Value: 10})
	p.add(9, Health{Value: 90})

	got, err := p.get(3)
	require.NoError(t, err)
	assert.Equal(t, Health{Value: 10}, got)
	assert.True(t, p.has(9))
	assert.False(t, p.has(4))
	assert.Equal(t, 2, p.len())

	_, err = p.get(4)
	require.ErrorIs(t, err, ErrComponentNotFound)
}

func TestPool_AddOverwrites(t *testing.T) {
	t.Parallel()

	p := newPool[Health]()
	p.add(1, Health{Value: 1})
	p.add(1, Health{Value: 2})

	assert.Equal(t, 1, p.len(), "adding twice must not stack a duplicate")
	got, err := p.get(1)
	require.NoError(t, err)
	assert.Equal(t, Health{Value: 2}, got)
}

func TestPool_GetPtr(t *testing.T) {
	t.Parallel()

	p := newPool[Position]()
	p.add(5, Position{X: 1, Y: 1})

	ptr, err := p.getPtr(5)
	require.NoError(t, err)
	ptr.X = 42

	got, err := p.get(5)
	require.NoError(t, err)
	assert.Equal(t, 42, got.X)

	_, err = p.getPtr(6)
	require.ErrorIs(t, err, ErrComponentNotFound)
}

func TestPool_RemoveSwapsLast(t *testing.T) {
	t.Parallel()

	p := newPool[Health]()
	p.add(1, Health{Value: 1})
	p.add(2, Health{Value: 2})
	p.add(3, Health{Value: 3})

	require.NoError(t, p.remove(1))

	// The last element moved into the freed slot.
	assert.Equal(t, []EntityID{3, 2}, p.entities)
	requirePoolDense(t, p, map[EntityID]Health{2: {Value: 2}, 3: {Value: 3}})

	// Removing twice reports the missing component and leaves the pool intact.
	err := p.remove(1)
	require.ErrorIs(t, err, ErrComponentNotFound)
	requirePoolDense(t, p, map[EntityID]Health{2: {Value: 2}, 3: {Value: 3}})

	require.NoError(t, p.remove(2))
	require.NoError(t, p.remove(3))
	assert.True(t, p.isEmpty())
}

func TestPool_GetAbstract(t *testing.T) {
	t.Parallel()

	p := newPool[Level]()
	p.add(0, Level{Value: 7})

	comp, ok := p.getAbstract(0)
	require.True(t, ok)
	assert.Equal(t, Level{Value: 7}, comp)

	_, ok = p.getAbstract(1)
	assert.False(t, ok)
}

// TestPool_Exhaustive runs every add/remove sequence of up to five operations over three entities
// and checks density after each step.
func TestPool_Exhaustive(t *testing.T) {
	t.Parallel()

	const steps = 5
	ids := []EntityID{0, 1, 2}

	for g := testutils.NewGen(); !g.Done(); {
		p := newPool[Level]()
		model := make(map[EntityID]Level)

		for step := range steps {
			eid := testutils.Pick(g, ids)
			if g.Intn(1) == 0 {
				value := Level{Value: step}
				p.add(eid, value)
				model[eid] = value
			} else {
				err := p.remove(eid)
				_, existed := model[eid]
				if existed {
					require.NoError(t, err)
				} else {
					require.ErrorIs(t, err, ErrComponentNotFound)
				}
				delete(model, eid)
			}
			requirePoolDense(t, p, model)
		}
	}
}

// -------------------------------------------------------------------------------------------------
// Model-Based Fuzzing
// -------------------------------------------------------------------------------------------------

type poolOp uint8

const (
	poolOpAdd    poolOp = 50
	poolOpRemove poolOp = 40
	poolOpGet    poolOp = 10
)

func TestPool_ModelBasedFuzz(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand()

	impl := newPool[Position]()
	model := make(map[EntityID]Position)
	ops := []poolOp{poolOpAdd, poolOpRemove, poolOpGet}

	const (
		opsMax = 1 << 13
		maxKey = 512
	)

	for range opsMax {
		eid := EntityID(prng.IntN(maxKey))
		if len(model) > 0 && prng.Float64() < 0.5 {
			eid = testutils.RandMapKey(prng, model)
		}

		switch testutils.RandWeightedOp(prng, ops) {
		case poolOpAdd:
			value := Position{X: prng.Int(), Y: prng.Int()}
			impl.add(eid, value)
			model[eid] = value
		case poolOpRemove:
			err := impl.remove(eid)
			_, existed := model[eid]
			assert.Equal(t, existed, err == nil, "remove(%d) existence mismatch", eid)
			delete(model, eid)
		case poolOpGet:
			got, err := impl.get(eid)
			want, existed := model[eid]
			assert.Equal(t, existed, err == nil, "get(%d) existence mismatch", eid)
			if existed {
				assert.Equal(t, want, got)
			}
		default:
			panic("unreachable")
		}
	}

	requirePoolDense(t, impl, model)
}
