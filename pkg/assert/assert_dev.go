//go:build !release

// Package assert checks internal invariants. A failed assertion is a bug in this module, never a
// caller error, so it panics instead of returning an error. Release builds compile the checks out.
package assert

import "fmt"

// That panics with the formatted message when cond is false.
func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}
