package main

import (
	"math/rand/v2"
	"time"

	"github.com/kengen-engine/kengen/pkg/ecs"
	"github.com/kengen-engine/kengen/pkg/game"
	"github.com/rotisserie/eris"
)

const (
	defaultPopulation = 10
	playerTag         = "player"
	particleGroup     = "particles"
	maxSpeed          = 40.0 // Units per second
	maxLifetime       = 3 * time.Second
)

// Position is a point on the plane.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (Position) Name() string { return "Position" }

// Velocity is a per-second displacement.
type Velocity struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (Velocity) Name() string { return "Velocity" }

// Lifetime is how long an entity has left before it is killed.
type Lifetime struct {
	Remaining time.Duration `json:"remaining"`
}

func (Lifetime) Name() string { return "Lifetime" }

// setupDemo spawns the initial population and registers the demo systems: movement integrates
// velocity, lifetime kills expired entities, and the spawner tops the population back up. The
// player never expires.
func setupDemo(g *game.Game, population int) error {
	r := g.Registry()

	movers, err := r.AddSystem("movement", ecs.TypeOf[Position](), ecs.TypeOf[Velocity]())
	if err != nil {
		return err
	}
	mortals, err := r.AddSystem("lifetime", ecs.TypeOf[Lifetime]())
	if err != nil {
		return err
	}

	prng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)) //nolint:gosec // demo randomness

	player := r.CreateEntity()
	if err := ecs.AddComponent(r, player, Position{}); err != nil {
		return err
	}
	if err := ecs.AddComponent(r, player, Velocity{X: 1}); err != nil {
		return err
	}
	if err := r.TagEntity(player, playerTag); err != nil {
		return err
	}

	spawn := func(r *ecs.Registry) error {
		e := r.CreateEntity()
		if err := ecs.AddComponent(r, e, Position{}); err != nil {
			return err
		}
		vel := Velocity{X: (prng.Float64()*2 - 1) * maxSpeed, Y: (prng.Float64()*2 - 1) * maxSpeed}
		if err := ecs.AddComponent(r, e, vel); err != nil {
			return err
		}
		life := Lifetime{Remaining: time.Duration(prng.Int64N(int64(maxLifetime))) + time.Millisecond}
		if err := ecs.AddComponent(r, e, life); err != nil {
			return err
		}
		return r.GroupEntity(e, particleGroup)
	}

	for r.NumEntities() < population {
		if err := spawn(r); err != nil {
			return eris.Wrap(err, "failed to spawn particle")
		}
	}

	systems := []game.TickSystem{
		game.NewTickFunc("movement", func(r *ecs.Registry, dt time.Duration) error {
			return moveAll(r, movers.Entities(), dt)
		}),
		game.NewTickFunc("lifetime", func(r *ecs.Registry, dt time.Duration) error {
			return expireAll(r, mortals.Entities(), dt)
		}),
		game.NewTickFunc("spawner", func(r *ecs.Registry, _ time.Duration) error {
			// Kills only land at the next flush, so count the survivors.
			alive := r.NumEntities() - len(expired(r, mortals.Entities()))
			for ; alive < population; alive++ {
				if err := spawn(r); err != nil {
					return eris.Wrap(err, "failed to spawn particle")
				}
			}
			return nil
		}),
	}
	for _, s := range systems {
		if err := g.AddSystem(s); err != nil {
			return err
		}
	}
	return nil
}

func moveAll(r *ecs.Registry, entities []ecs.Entity, dt time.Duration) error {
	for _, e := range entities {
		vel, err := ecs.GetComponent[Velocity](r, e)
		if err != nil {
			return err
		}
		pos, err := ecs.GetComponentMut[Position](r, e)
		if err != nil {
			return err
		}
		pos.X += vel.X * dt.Seconds()
		pos.Y += vel.Y * dt.Seconds()
	}
	return nil
}

func expireAll(r *ecs.Registry, entities []ecs.Entity, dt time.Duration) error {
	for _, e := range entities {
		life, err := ecs.GetComponentMut[Lifetime](r, e)
		if err != nil {
			return err
		}
		if life.Remaining <= 0 {
			continue // Already queued
		}
		life.Remaining -= dt
		if life.Remaining <= 0 {
			if err := r.KillEntity(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// expired returns the entities whose lifetime ran out and are waiting for the next flush.
func expired(r *ecs.Registry, entities []ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range entities {
		life, err := ecs.GetComponent[Lifetime](r, e)
		if err == nil && life.Remaining <= 0 {
			out = append(out, e)
		}
	}
	return out
}
