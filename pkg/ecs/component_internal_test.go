package ecs

import (
	"fmt"
	"reflect"
	"testing"

	. "github.com/kengen-engine/kengen/pkg/ecs/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentManager_Register(t *testing.T) {
	t.Parallel()

	cm := newComponentManager()

	healthID, err := cm.register(TypeOf[Health]())
	require.NoError(t, err)
	positionID, err := cm.register(TypeOf[Position]())
	require.NoError(t, err)

	// IDs are assigned in first-use order.
	assert.Equal(t, componentID(0), healthID)
	assert.Equal(t, componentID(1), positionID)

	// Registering again returns the cached ID without advancing the counter.
	again, err := cm.register(TypeOf[Health]())
	require.NoError(t, err)
	assert.Equal(t, healthID, again)
	assert.Equal(t, componentID(2), cm.nextID)

	id, err := cm.getID("Position")
	require.NoError(t, err)
	assert.Equal(t, positionID, id)
	assert.Equal(t, "Position", cm.name(positionID))
	assert.Equal(t, reflect.TypeFor[Position](), cm.types["Position"])
}

func TestComponentManager_RegisterErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(cm *componentManager)
		ct    ComponentType
	}{
		{
			name: "empty name",
			ct:   ComponentType{name: ""},
		},
		{
			name: "same name different type",
			setup: func(cm *componentManager) {
				_, _ = cm.register(TypeOf[Health]())
			},
			ct: TypeOf[ImpostorHealth](),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cm := newComponentManager()
			if tt.setup != nil {
				tt.setup(&cm)
			}
			_, err := cm.register(tt.ct)
			require.Error(t, err)
		})
	}
}

func TestComponentManager_Capacity(t *testing.T) {
	t.Parallel()

	cm := newComponentManager()
	for i := range MaxComponents {
		cid, err := cm.register(ComponentType{name: fmt.Sprintf("c%d", i)})
		require.NoError(t, err)
		assert.Equal(t, componentID(i), cid) //nolint:gosec // i < MaxComponents
	}

	_, err := cm.register(ComponentType{name: "one_too_many"})
	require.ErrorIs(t, err, ErrComponentCapacityExceeded)

	// Already registered types still resolve once the table is full.
	cid, err := cm.register(ComponentType{name: "c7"})
	require.NoError(t, err)
	assert.Equal(t, componentID(7), cid)
}

func TestComponentManager_GetIDUnregistered(t *testing.T) {
	t.Parallel()

	cm := newComponentManager()
	_, err := cm.getID("Nope")
	require.ErrorIs(t, err, ErrComponentNotFound)
}
