package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// SteepSlope is the slope magnitude above which a curve segment is
	// treated as vertical. The cutoff is empirical: steep but valid segments
	// above it are solved as if vertical, which moves the hit by at most
	// |dx| of that segment.
	SteepSlope = 1000

	// verticalEpsilon is the |dx| below which a segment counts as vertical.
	verticalEpsilon = 1e-9

	// rayReach over-extends the sweep ray past the region diagonal.
	rayReach = math.Sqrt2
)

// RotateCurve rotates every endpoint of c by radians around center and
// returns the result as a new curve of the same length and order.
func RotateCurve(c Curve, radians float64, center r2.Vec) Curve {
	if c == nil {
		return nil
	}
	m := RotateAbout(radians, center)
	out := make(Curve, len(c))
	for i, s := range c {
		out[i] = m.TransformSegment(s)
	}
	return out
}

// SweepRay returns the projection ray for sweep angle theta. The angle is
// negated because y grows downwards: increasing theta turns the ray
// counter-clockwise on screen.
func SweepRay(center r2.Vec, theta, maxRadius float64) LineSegment {
	reach := maxRadius * rayReach
	return LineSegment{
		P1: center,
		P2: r2.Vec{
			X: center.X + reach*math.Cos(-theta),
			Y: center.Y + reach*math.Sin(-theta),
		},
	}
}

// Hit is the nearest intersection of the sweep ray with a curve.
type Hit struct {
	Point    r2.Vec  `json:"point"`
	Distance float64 `json:"distance"`
	Segment  int     `json:"segment"` // index into the curve
}

// Intersect finds the point where the sweep ray at theta first meets c,
// scanning segments in curve order. The first of equally near candidates
// wins. ok is false when no segment is hit.
func Intersect(c Curve, center r2.Vec, theta, maxRadius float64) (hit Hit, ok bool) {
	ray := SweepRay(center, theta, maxRadius)
	limit := maxRadius * rayReach

	for i, s := range c {
		if !s.Intersects(ray) {
			continue
		}

		p := solveIntersection(s, ray, center)
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}

		dist := r2.Norm(r2.Sub(p, center))
		if dist > limit*(1+1e-9) {
			continue
		}

		if !ok || dist < hit.Distance {
			hit = Hit{Point: p, Distance: dist, Segment: i}
			ok = true
		}
	}

	return hit, ok
}

// solveIntersection intersects the infinite lines through s and ray using
// slope/intercept form, then patches the vertical cases.
func solveIntersection(s, ray LineSegment, center r2.Vec) r2.Vec {
	m1 := s.Slope()
	m2 := ray.Slope()
	b1 := s.P1.Y - m1*s.P1.X
	b2 := ray.P1.Y - m2*ray.P1.X

	x := (b2 - b1) / (m1 - m2)
	y := m1*x + b1

	switch {
	case isVertical(ray):
		x = center.X
		if isVertical(s) {
			// Both vertical and overlapping: the ray meets the near end.
			y = nearestY(s, center)
		} else {
			y = m1*x + b1
		}
	case math.Abs(m2) > SteepSlope && (isVertical(s) || math.Abs(m1) > SteepSlope):
		x, y = solveSteep(s, ray)
	case isVertical(s) || math.Abs(m1) > SteepSlope:
		x = s.P1.X
		y = m2*x + b2
	}

	return r2.Vec{X: x, Y: y}
}

// solveSteep intersects two near-vertical lines in x = k*y + c form, where
// slope/intercept form overflows.
func solveSteep(s, ray LineSegment) (x, y float64) {
	k1 := (s.P2.X - s.P1.X) / (s.P2.Y - s.P1.Y)
	k2 := (ray.P2.X - ray.P1.X) / (ray.P2.Y - ray.P1.Y)
	c1 := s.P1.X - k1*s.P1.Y
	c2 := ray.P1.X - k2*ray.P1.Y

	y = (c2 - c1) / (k1 - k2)
	return c1 + k1*y, y
}

func isVertical(s LineSegment) bool {
	return math.Abs(s.P2.X-s.P1.X) < verticalEpsilon
}

// nearestY returns the y of the point on vertical segment s closest to center.
func nearestY(s LineSegment, center r2.Vec) float64 {
	lo, hi := min(s.P1.Y, s.P2.Y), max(s.P1.Y, s.P2.Y)
	return min(max(center.Y, lo), hi)
}
