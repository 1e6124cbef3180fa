package ecs

import (
	"iter"
	"strings"

	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// MaxComponents is the width of a Signature and the maximum number of distinct component types a
// Registry can hold.
const MaxComponents = 32

// Signature is a fixed-width set of component type IDs. An entity's signature records which
// component types it has; a system's signature records which ones it requires.
//
// Signature wraps a bitmap whose backing slice would be shared by a plain copy. Use Clone to get
// an independent value.
type Signature struct {
	bits bitmap.Bitmap
}

// NewSignature returns a signature with the given bits set.
func NewSignature(bits ...uint32) (Signature, error) {
	var s Signature
	for _, bit := range bits {
		if err := s.Set(bit, true); err != nil {
			return Signature{}, err
		}
	}
	return s, nil
}

// Set turns a bit on or off. Bits at or beyond MaxComponents are rejected rather than wrapped.
func (s *Signature) Set(bit uint32, on bool) error {
	if bit >= MaxComponents {
		return eris.Wrapf(ErrComponentCapacityExceeded, "bit %d is outside signature width %d", bit, MaxComponents)
	}
	if on {
		s.bits.Set(bit)
	} else {
		s.bits.Remove(bit)
	}
	return nil
}

// Get reports whether a bit is set. Bits outside the width are never set.
func (s Signature) Get(bit uint32) bool {
	if bit >= MaxComponents {
		return false
	}
	return s.bits.Contains(bit)
}

// Reset clears every bit.
func (s *Signature) Reset() {
	s.bits.Clear()
}

// IsEmpty reports whether no bit is set.
func (s Signature) IsEmpty() bool {
	return s.bits.Count() == 0
}

// Size returns the width of the signature.
func (Signature) Size() int {
	return MaxComponents
}

// Count returns the number of set bits.
func (s Signature) Count() int {
	return s.bits.Count()
}

// Clone returns a copy that doesn't share storage with s.
func (s Signature) Clone() Signature {
	return Signature{bits: s.bits.Clone(nil)}
}

// Union returns s | other.
func (s Signature) Union(other Signature) Signature {
	out := s.bits.Clone(nil)
	out.Or(other.bits)
	return Signature{bits: out}
}

// Intersection returns s & other.
func (s Signature) Intersection(other Signature) Signature {
	out := s.bits.Clone(nil)
	out.And(other.bits)
	return Signature{bits: out}
}

// Difference returns s &^ other.
func (s Signature) Difference(other Signature) Signature {
	out := s.bits.Clone(nil)
	out.AndNot(other.bits)
	return Signature{bits: out}
}

// Contains reports whether every bit of sub is set in s, i.e. (s & sub) == sub. This is the
// system matching rule: an entity matches when it has at least the required components.
func (s Signature) Contains(sub Signature) bool {
	return s.Intersection(sub).Count() == sub.Count()
}

// Equal reports whether both signatures have exactly the same bits.
func (s Signature) Equal(other Signature) bool {
	return s.Count() == other.Count() && s.Contains(other)
}

// Iter yields the state of every bit from 0 to MaxComponents-1. The sequence can be ranged over
// any number of times.
func (s Signature) Iter() iter.Seq[bool] {
	return func(yield func(bool) bool) {
		for bit := range uint32(MaxComponents) {
			if !yield(s.bits.Contains(bit)) {
				return
			}
		}
	}
}

// Bits yields the indices of the set bits in ascending order.
func (s Signature) Bits() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for bit := range uint32(MaxComponents) {
			if s.bits.Contains(bit) && !yield(bit) {
				return
			}
		}
	}
}

// String renders the signature most significant bit first, like a binary literal.
func (s Signature) String() string {
	var b strings.Builder
	b.Grow(MaxComponents)
	for bit := MaxComponents - 1; bit >= 0; bit-- {
		if s.bits.Contains(uint32(bit)) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
