package testutils

import "github.com/kengen-engine/kengen/pkg/assert"

// Gen enumerates every combination of the choices a test makes. Wrap the test body in
// `for g := NewGen(); !g.Done(); { ... }` and draw choices from g; each pass through the body sees
// a different combination until all have been visited.
//
// Gen records the sequence of values it returned in the last pass together with the bound of each
// draw. Done advances to the next sequence by incrementing the rightmost value that is still below
// its bound and discarding everything after it, like an odometer whose wheels are only discovered
// as the test draws them.
//
// See: <https://matklad.github.io/2021/11/07/generate-all-the-things.html>
type Gen struct {
	started bool
	v       [32]struct{ value, bound uint32 }
	p       int // Position of the next draw in the current pass
	pMax    int // Number of draws recorded
}

// NewGen creates a new exhaustive generator.
func NewGen() *Gen {
	return &Gen{}
}

// Done reports whether every combination has been visited. It must be called once before each pass.
func (g *Gen) Done() bool {
	if !g.started {
		g.started = true
		return false
	}
	for i := g.pMax - 1; i >= 0; i-- {
		if g.v[i].value < g.v[i].bound {
			g.v[i].value++
			g.pMax = i + 1
			g.p = 0
			return false
		}
	}
	return true
}

func (g *Gen) gen(bound uint32) uint32 {
	assert.That(g.p < len(g.v), "exhaustigen: exceeded maximum depth of %d", len(g.v))
	if g.p == g.pMax {
		g.v[g.p] = struct{ value, bound uint32 }{}
		g.pMax++
	}
	g.v[g.p].bound = bound
	g.p++
	return g.v[g.p-1].value
}

// Intn returns an int in range [0, bound] (inclusive).
func (g *Gen) Intn(bound int) int {
	return int(g.gen(uint32(bound))) //nolint:gosec // bound is expected to be small in tests
}

// Index returns a valid index into a slice of the given length.
func (g *Gen) Index(length int) int {
	assert.That(length > 0, "exhaustigen: empty slice")
	return g.Intn(length - 1)
}

// Pick returns an element from the slice.
func Pick[T any](g *Gen, slice []T) T {
	return slice[g.Index(len(slice))]
}
