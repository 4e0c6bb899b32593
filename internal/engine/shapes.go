package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// MinSides and MaxSides bound the polygon side count.
	MinSides = 3
	MaxSides = 15

	// circleSteps approximates a circle with 1° chords.
	circleSteps = 360
)

// Generate produces the base curve for a shape mode. Freehand yields an
// empty curve; the caller fills it from pointer input. sides is only used
// for ModePolygon and is clamped to [MinSides, MaxSides].
func Generate(mode Mode, sides int, center r2.Vec, radius float64) Curve {
	switch mode {
	case ModeCircle:
		return Circle(center, radius)
	case ModeSquare:
		return Square(center, radius)
	case ModeTriangle:
		return Triangle(center, radius)
	case ModePolygon:
		return RegularPolygon(ClampSides(sides), center, radius)
	default:
		return nil
	}
}

// Circle approximates a circle by 360 chords.
func Circle(center r2.Vec, radius float64) Curve {
	return radialPath(circleSteps, center, radius)
}

// RegularPolygon returns a closed polygon with the given number of sides.
// The first vertex sits at center + (radius, 0).
func RegularPolygon(sides int, center r2.Vec, radius float64) Curve {
	return radialPath(ClampSides(sides), center, radius)
}

// radialPath walks the full turn in n equal steps, always drawing from the
// previous point to the new one. The last step lands back on the first
// vertex, which closes the path.
func radialPath(n int, center r2.Vec, radius float64) Curve {
	step := 2 * math.Pi / float64(n)
	curve := make(Curve, 0, n)

	first := r2.Vec{X: center.X + radius, Y: center.Y}
	last := first
	for i := 1; i <= n; i++ {
		next := first
		if i < n {
			angle := step * float64(i)
			next = r2.Vec{
				X: center.X + radius*math.Cos(angle),
				Y: center.Y + radius*math.Sin(angle),
			}
		}
		curve = append(curve, LineSegment{P1: last, P2: next})
		last = next
	}
	return curve
}

// Square returns the axis-aligned square with corners at center ± radius,
// traversed top, right, bottom, left.
func Square(center r2.Vec, radius float64) Curve {
	l, r := center.X-radius, center.X+radius
	t, b := center.Y-radius, center.Y+radius
	return Curve{
		Seg(l, t, r, t),
		Seg(r, t, r, b),
		Seg(r, b, l, b),
		Seg(l, b, l, t),
	}
}

// Triangle returns the isosceles triangle with its apex above center and its
// base on the lower quarter line.
func Triangle(center r2.Vec, radius float64) Curve {
	l, r := center.X-radius, center.X+radius
	t, b := center.Y-radius, center.Y+radius
	return Curve{
		Seg(center.X, t, r, b),
		Seg(r, b, l, b),
		Seg(l, b, center.X, t),
	}
}

// ClampSides clamps n to [MinSides, MaxSides].
func ClampSides(n int) int {
	return min(max(n, MinSides), MaxSides)
}
