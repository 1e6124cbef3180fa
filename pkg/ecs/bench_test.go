package ecs_test

import (
	"testing"

	"github.com/kengen-engine/kengen/pkg/ecs"
	. "github.com/kengen-engine/kengen/pkg/ecs/internal/testutils"
)

// BenchmarkRegistry_CreateEntity measures creating entities and attaching components, flushed in
// batches like a tick would.
func BenchmarkRegistry_CreateEntity(b *testing.B) {
	benchmarks := []struct {
		name   string
		attach func(*ecs.Registry, ecs.Entity)
	}{
		{
			name:   "no components",
			attach: func(*ecs.Registry, ecs.Entity) {},
		},
		{
			name: "1 component",
			attach: func(r *ecs.Registry, e ecs.Entity) {
				_ = ecs.AddComponent(r, e, Position{X: 1, Y: 2})
			},
		},
		{
			name: "3 components",
			attach: func(r *ecs.Registry, e ecs.Entity) {
				_ = ecs.AddComponent(r, e, Position{X: 1, Y: 2})
				_ = ecs.AddComponent(r, e, Velocity{X: 1, Y: 1})
				_ = ecs.AddComponent(r, e, Health{Value: 100})
			},
		},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			r := ecs.NewRegistry()
			_, _ = r.AddSystem("movers", ecs.TypeOf[Position](), ecs.TypeOf[Velocity]())

			b.ReportAllocs()
			b.ResetTimer()
			for i := range b.N {
				e := r.CreateEntity()
				bm.attach(r, e)
				if i%1024 == 0 {
					r.Update()
				}
			}
		})
	}
}

// BenchmarkRegistry_Churn measures a steady state where every tick kills and recreates a slice of
// the population, which exercises ID recycling and swap-removal.
func BenchmarkRegistry_Churn(b *testing.B) {
	const (
		population = 10_000
		churn      = 100
	)

	r := ecs.NewRegistry()
	movers, _ := r.AddSystem("movers", ecs.TypeOf[Position](), ecs.TypeOf[Velocity]())
	for range population {
		e := r.CreateEntity()
		_ = ecs.AddComponent(r, e, Position{})
		_ = ecs.AddComponent(r, e, Velocity{X: 1})
	}
	r.Update()

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		members := movers.Entities()
		for _, e := range members[:churn] {
			_ = r.KillEntity(e)
		}
		for range churn {
			e := r.CreateEntity()
			_ = ecs.AddComponent(r, e, Position{})
			_ = ecs.AddComponent(r, e, Velocity{X: 1})
		}
		r.Update()
	}
}

// BenchmarkSystem_Iterate measures a movement pass over every member of a system.
func BenchmarkSystem_Iterate(b *testing.B) {
	const population = 10_000

	r := ecs.NewRegistry()
	movers, _ := r.AddSystem("movers", ecs.TypeOf[Position](), ecs.TypeOf[Velocity]())
	for range population {
		e := r.CreateEntity()
		_ = ecs.AddComponent(r, e, Position{})
		_ = ecs.AddComponent(r, e, Velocity{X: 1, Y: 1})
	}
	r.Update()

	b.ResetTimer()
	for range b.N {
		for _, e := range movers.Entities() {
			vel, _ := ecs.GetComponent[Velocity](r, e)
			pos, _ := ecs.GetComponentMut[Position](r, e)
			pos.X += vel.X
			pos.Y += vel.Y
		}
	}
}
