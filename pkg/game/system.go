package game

import (
	"time"

	"github.com/kengen-engine/kengen/pkg/ecs"
)

// TickSystem is game logic run once per running tick, after the registry has been flushed. It
// typically iterates the members of an ecs.System it registered during setup.
type TickSystem interface {
	Name() string
	Tick(r *ecs.Registry, dt time.Duration) error
}

// TickFunc adapts a function to a TickSystem.
type TickFunc struct {
	name string
	fn   func(*ecs.Registry, time.Duration) error
}

var _ TickSystem = TickFunc{}

// NewTickFunc creates a TickSystem that calls fn.
func NewTickFunc(name string, fn func(*ecs.Registry, time.Duration) error) TickFunc {
	return TickFunc{name: name, fn: fn}
}

func (f TickFunc) Name() string { return f.name }

func (f TickFunc) Tick(r *ecs.Registry, dt time.Duration) error { return f.fn(r, dt) }
