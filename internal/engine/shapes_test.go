package engine

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

const tol = 1e-9

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestRegularPolygonClosed(t *testing.T) {
	center := r2.Vec{X: 250, Y: 250}
	const radius = 125.0

	for sides := MinSides; sides <= MaxSides; sides++ {
		t.Run(fmt.Sprintf("sides_%d", sides), func(t *testing.T) {
			c := RegularPolygon(sides, center, radius)
			require.Len(t, c, sides)
			assert.True(t, c.IsClosed(tol), "polygon must close")
			assert.Equal(t, r2.Vec{X: 375, Y: 250}, c[0].P1)
			assert.InDelta(t, c[0].P1.X, c[sides-1].P2.X, tol)
			assert.InDelta(t, c[0].P1.Y, c[sides-1].P2.Y, tol)

			for i, s := range c {
				assert.InDelta(t, radius, r2.Norm(r2.Sub(s.P1, center)), 1e-9, "vertex %d off the circle", i)
			}
		})
	}
}

func TestRegularPolygonClampsSides(t *testing.T) {
	center := r2.Vec{X: 250, Y: 250}
	assert.Len(t, RegularPolygon(1, center, 10), MinSides)
	assert.Len(t, RegularPolygon(-4, center, 10), MinSides)
	assert.Len(t, RegularPolygon(99, center, 10), MaxSides)
	assert.Len(t, Generate(ModePolygon, 40, center, 10), MaxSides)
}

func TestCircle(t *testing.T) {
	center := r2.Vec{X: 250, Y: 250}
	c := Circle(center, 125)
	require.Len(t, c, 360)
	assert.True(t, c.IsClosed(tol))

	// 1° chords
	for _, s := range c {
		assert.InDelta(t, 2*125*math.Sin(math.Pi/360), s.Length(), 1e-9)
	}
}

func TestSquareAndTriangle(t *testing.T) {
	region := DrawRegion{Size: 500}

	square := Generate(ModeSquare, 0, region.Center(), region.ShapeRadius())
	want := Curve{
		Seg(125, 125, 375, 125),
		Seg(375, 125, 375, 375),
		Seg(375, 375, 125, 375),
		Seg(125, 375, 125, 125),
	}
	if diff := cmp.Diff(want, square, approx); diff != "" {
		t.Errorf("square mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, square.IsClosed(tol))
	assert.Equal(t, Rect{X: 125, Y: 125, Width: 250, Height: 250}, square.Bounds())

	triangle := Generate(ModeTriangle, 0, region.Center(), region.ShapeRadius())
	require.Len(t, triangle, 3)
	assert.True(t, triangle.IsClosed(tol))
	assert.Equal(t, r2.Vec{X: 250, Y: 125}, triangle[0].P1)
	assert.Equal(t, Rect{X: 125, Y: 125, Width: 250, Height: 250}, triangle.Bounds())
}

func TestGenerateFreehandIsEmpty(t *testing.T) {
	assert.Empty(t, Generate(ModeFreehand, 5, r2.Vec{X: 1, Y: 1}, 1))
}

func TestCurveIsClosed(t *testing.T) {
	tests := []struct {
		name  string
		curve Curve
		want  bool
	}{
		{"empty", nil, false},
		{"open_path", Curve{Seg(0, 0, 1, 0), Seg(1, 0, 1, 1)}, false},
		{"gap", Curve{Seg(0, 0, 1, 0), Seg(1.1, 0, 0, 0)}, false},
		{"loop", Curve{Seg(0, 0, 1, 0), Seg(1, 0, 0, 1), Seg(0, 1, 0, 0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.curve.IsClosed(tol))
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeCircle, ModeSquare, ModeTriangle, ModePolygon, ModeFreehand} {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	_, err := ParseMode("hexagon")
	assert.Error(t, err)

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("polygon")))
	assert.Equal(t, ModePolygon, m)
	assert.Equal(t, "Mode(9)", Mode(9).String())
}

func TestRectUnion(t *testing.T) {
	region := DrawRegion{Size: 500}
	assert.Equal(t, Rect{Width: 500, Height: 500}, region.Bounds())

	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"empty_left", Rect{}, region.Bounds(), region.Bounds()},
		{"empty_right", region.Bounds(), Rect{X: 10, Y: 10}, region.Bounds()},
		{"inside", Rect{X: 125, Y: 125, Width: 250, Height: 250}, region.Bounds(), region.Bounds()},
		{"overhang", Rect{X: 325, Y: -25, Width: 250, Height: 250}, region.Bounds(), Rect{X: 0, Y: -25, Width: 575, Height: 525}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Union(tt.b))
		})
	}
	assert.True(t, Curve(nil).Bounds().IsEmpty())
}
