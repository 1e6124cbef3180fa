package ecs

import "github.com/rotisserie/eris"

var (
	// ErrComponentNotFound is returned when querying or removing a component type that the entity
	// doesn't have, or that was never registered.
	ErrComponentNotFound = eris.New("component not found")

	// ErrComponentCapacityExceeded is returned when a component type would need a signature bit at or
	// beyond MaxComponents.
	ErrComponentCapacityExceeded = eris.New("component capacity exceeded")

	// ErrEntityCapacityExceeded is the panic value when no entity ID is left to allocate.
	ErrEntityCapacityExceeded = eris.New("entity capacity exceeded")

	// ErrInvalidEntity is returned when operating on an entity handle that isn't live. This covers
	// IDs that were never allocated as well as stale handles whose ID has been recycled.
	ErrInvalidEntity = eris.New("invalid entity")

	// ErrSystemNotFound is returned when looking up a system name that isn't registered.
	ErrSystemNotFound = eris.New("system not found")

	// ErrSystemExists is returned when registering a system under a name that is already taken.
	ErrSystemExists = eris.New("system already registered")

	// ErrTagNotFound is returned when no entity carries the requested tag.
	ErrTagNotFound = eris.New("tag not found")
)
