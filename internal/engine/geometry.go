package engine

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

// LineSegment is a straight segment between two plane points.
// Plane coordinates follow the render surface: x grows to the right,
// y grows downwards.
type LineSegment struct {
	P1 r2.Vec `json:"p1"`
	P2 r2.Vec `json:"p2"`
}

// Seg builds a segment from raw coordinates.
func Seg(x1, y1, x2, y2 float64) LineSegment {
	return LineSegment{P1: r2.Vec{X: x1, Y: y1}, P2: r2.Vec{X: x2, Y: y2}}
}

// Translate returns s moved by d.
func (s LineSegment) Translate(d r2.Vec) LineSegment {
	return LineSegment{P1: r2.Add(s.P1, d), P2: r2.Add(s.P2, d)}
}

// Slope returns dy/dx. Vertical segments yield ±Inf (or NaN when the
// segment is a single point); callers handle those explicitly.
func (s LineSegment) Slope() float64 {
	return (s.P2.Y - s.P1.Y) / (s.P2.X - s.P1.X)
}

// Length returns the Euclidean length of s.
func (s LineSegment) Length() float64 {
	return r2.Norm(r2.Sub(s.P2, s.P1))
}

// Intersects reports whether s and o share at least one point, including
// touching endpoints and collinear overlap.
func (s LineSegment) Intersects(o LineSegment) bool {
	return relativeCCW(s.P1, s.P2, o.P1)*relativeCCW(s.P1, s.P2, o.P2) <= 0 &&
		relativeCCW(o.P1, o.P2, s.P1)*relativeCCW(o.P1, o.P2, s.P2) <= 0
}

// relativeCCW returns the side of the line a->b on which p lies: 1, -1, or 0
// when p is on the segment itself. Collinear points beyond the segment ends
// report the side of the end they lie past.
func relativeCCW(a, b, p r2.Vec) int {
	d := r2.Sub(b, a)
	q := r2.Sub(p, a)
	ccw := q.X*d.Y - q.Y*d.X
	if ccw == 0 {
		ccw = r2.Dot(q, d)
		if ccw > 0 {
			q = r2.Sub(q, d)
			ccw = r2.Dot(q, d)
			if ccw < 0 {
				ccw = 0
			}
		}
	}
	switch {
	case ccw < 0:
		return -1
	case ccw > 0:
		return 1
	default:
		return 0
	}
}

// Curve is an ordered sequence of segments. Insertion order is traversal
// order. A Curve exclusively owns its segments; use Clone before handing one
// to another owner.
type Curve []LineSegment

// Clone returns an independent copy of c.
func (c Curve) Clone() Curve {
	if c == nil {
		return nil
	}
	out := make(Curve, len(c))
	copy(out, c)
	return out
}

// Translate moves every segment of c by d in place.
func (c Curve) Translate(d r2.Vec) {
	for i := range c {
		c[i] = c[i].Translate(d)
	}
}

// Bounds returns the axis-aligned bounding box of all endpoints.
func (c Curve) Bounds() Rect {
	if len(c) == 0 {
		return Rect{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range c {
		for _, p := range [2]r2.Vec{s.P1, s.P2} {
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// IsClosed reports whether consecutive segments are connected and the last
// segment ends where the first starts, within tol.
func (c Curve) IsClosed(tol float64) bool {
	if len(c) == 0 {
		return false
	}
	for i := range c {
		next := c[(i+1)%len(c)]
		if !samePoint(c[i].P2, next.P1, tol) {
			return false
		}
	}
	return true
}

func samePoint(a, b r2.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) && scalar.EqualWithinAbs(a.Y, b.Y, tol)
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// DrawRegion is the square domain, anchored at the origin, that holds the
// curve. Shape generation and intersection are relative to it.
type DrawRegion struct {
	Size float64
}

// Center returns the region center, which is also the sweep center.
func (d DrawRegion) Center() r2.Vec {
	return r2.Vec{X: d.Size / 2, Y: d.Size / 2}
}

// ShapeRadius is the radius used for generated shapes: a quarter of the side.
func (d DrawRegion) ShapeRadius() float64 {
	return d.Size / 4
}

// MaxRadius is the nominal sweep radius, half the side. The sweep ray is
// extended by √2 beyond it to reach the corners.
func (d DrawRegion) MaxRadius() float64 {
	return d.Size / 2
}

// Bounds returns the region as a Rect.
func (d DrawRegion) Bounds() Rect {
	return Rect{Width: d.Size, Height: d.Size}
}

// Contains reports whether p may receive pointer input: x in [0,S), y in [0,S].
// The right edge belongs to the divider.
func (d DrawRegion) Contains(p r2.Vec) bool {
	return p.X >= 0 && p.X < d.Size && p.Y >= 0 && p.Y <= d.Size
}
