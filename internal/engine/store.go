package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Store holds the three segment sequences of a session: the base curve,
// its rotated copy and the waveform trace. All mutation goes through these
// methods; Store is not safe for concurrent use on its own (Engine guards it).
type Store struct {
	base     Curve
	rotated  Curve
	rotation float64 // fraction of a full turn in [0,1]
	trace    Trace
}

// Reset clears every sequence and the rotation.
func (s *Store) Reset() {
	s.base = nil
	s.rotated = nil
	s.rotation = 0
	s.trace.Reset()
}

// SetBase replaces the base curve; the store takes ownership of c.
func (s *Store) SetBase(c Curve) {
	s.base = c
	s.rotated = nil
}

// Append adds a segment to the base curve.
func (s *Store) Append(seg LineSegment) {
	s.base = append(s.base, seg)
}

// Translate moves base and rotated curves together by d.
func (s *Store) Translate(d r2.Vec) {
	s.base.Translate(d)
	s.rotated.Translate(d)
}

// Rotate sets the rotation fraction (clamped to [0,1]) and recomputes the
// rotated curve around center immediately.
func (s *Store) Rotate(fraction float64, center r2.Vec) {
	s.rotation = ClampUnit(fraction)
	if s.rotation == 0 {
		s.rotated = nil
		return
	}
	s.rotated = RotateCurve(s.base, 2*math.Pi*s.rotation, center)
}

// CommitRotation makes the rotated curve the new base and clears the
// rotation. It is a no-op while the rotation is zero.
func (s *Store) CommitRotation() {
	if s.rotation == 0 {
		return
	}
	s.base = s.rotated.Clone()
	s.rotated = nil
	s.rotation = 0
}

// Rotation returns the current rotation fraction.
func (s *Store) Rotation() float64 {
	return s.rotation
}

// Active returns the curve used for rendering and intersection: the base
// curve when unrotated, the rotated copy otherwise. The result aliases the
// store and must not be retained across mutations.
func (s *Store) Active() Curve {
	if s.rotation == 0 {
		return s.base
	}
	return s.rotated
}

// Base returns the base curve. Same aliasing rules as Active.
func (s *Store) Base() Curve {
	return s.base
}

// Trace returns the waveform trace.
func (s *Store) Trace() *Trace {
	return &s.trace
}

// ClampUnit clamps v to [0,1]; NaN maps to 0.
func ClampUnit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return min(v, 1)
}
