package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func layers(cmds []DrawCommand) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Layer
	}
	return out
}

func findLayer(t *testing.T, cmds []DrawCommand, layer string) DrawCommand {
	t.Helper()
	for _, c := range cmds {
		if c.Layer == layer {
			return c
		}
	}
	t.Fatalf("layer %q not found in %v", layer, layers(cmds))
	return DrawCommand{}
}

func TestCompileDrawCommandsSquare(t *testing.T) {
	e := newTestEngine(t, ModeSquare)
	cmds := CompileDrawCommands(e.Tick())

	want := []string{
		LayerCurve, LayerCrosshair, LayerDivider, LayerAxis,
		LayerProjector, LayerMarker, LayerTrace,
	}
	assert.Equal(t, want, layers(cmds))

	curve := findLayer(t, cmds, LayerCurve)
	require.Len(t, curve.Path, 5, "closed square is one move and four lines")
	assert.Equal(t, PathCommand{"M", 125.0, 125.0}, curve.Path[0])
	assert.Equal(t, PathCommand{"L", 125.0, 125.0}, curve.Path[4])
	assert.Equal(t, colorInk, curve.Stroke)

	divider := findLayer(t, cmds, LayerDivider)
	assert.Equal(t, []PathCommand{{"M", 500.0, 0.0}, {"L", 500.0, 500.0}}, divider.Path)

	axis := findLayer(t, cmds, LayerAxis)
	assert.Equal(t, []PathCommand{{"M", 501.0, 250.0}, {"L", 1500.0, 250.0}}, axis.Path)

	marker := findLayer(t, cmds, LayerMarker)
	assert.Equal(t, colorSweep, marker.Fill)
	assert.Empty(t, marker.Stroke)
	require.Len(t, marker.Path, 1)
	assert.Equal(t, "A", marker.Path[0][0])
	assert.Equal(t, 375.0, marker.Path[0][1])

	projector := findLayer(t, cmds, LayerProjector)
	require.Len(t, projector.Path, 3)
	last := projector.Path[2]
	assert.Equal(t, 500.0, last[1], "projector ends on the divider")
}

func TestCompileDrawCommandsWhileDrawing(t *testing.T) {
	e := newTestEngine(t, ModeFreehand)
	e.PointerDown(r2.Vec{X: 100, Y: 100}, ButtonPrimary)

	cmds := CompileDrawCommands(e.Tick())
	assert.Equal(t, []string{LayerPreview, LayerCrosshair, LayerDivider, LayerAxis}, layers(cmds))

	e.PointerMove(r2.Vec{X: 200, Y: 120}, ButtonPrimary)
	cmds = CompileDrawCommands(e.Render())
	assert.Equal(t, []string{LayerCurve, LayerPreview, LayerCrosshair, LayerDivider, LayerAxis}, layers(cmds))
}

func TestSegmentsPath(t *testing.T) {
	got := segmentsPath(Curve{
		Seg(0, 0, 1, 1),
		Seg(1, 1, 2, 0),
		Seg(5, 5, 6, 6),
	})
	want := []PathCommand{
		{"M", 0.0, 0.0},
		{"L", 1.0, 1.0},
		{"L", 2.0, 0.0},
		{"M", 5.0, 5.0},
		{"L", 6.0, 6.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestDrawCommandsToJSON(t *testing.T) {
	assert.Nil(t, CompileDrawCommands(nil))

	s, err := DrawCommandsToJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	e := newTestEngine(t, ModeTriangle)
	s, err = DrawCommandsToJSON(CompileDrawCommands(e.Tick()))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &decoded))
	require.NotEmpty(t, decoded)
	assert.Equal(t, "path", decoded[0]["op"])
	assert.Equal(t, LayerCurve, decoded[0]["layer"])
}

func TestFrameJSON(t *testing.T) {
	e := newTestEngine(t, ModeSquare)
	data, err := json.Marshal(e.Tick())
	require.NoError(t, err)

	var decoded struct {
		Index int    `json:"index"`
		Mode  string `json:"mode"`
		Width float64
		Hit   *struct {
			Point struct{ X, Y float64 } `json:"point"`
		} `json:"hit"`
		Region any `json:"region"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1, decoded.Index)
	assert.Equal(t, "square", decoded.Mode)
	assert.Equal(t, 1500.0, decoded.Width)
	require.NotNil(t, decoded.Hit)
	assert.InDelta(t, 375, decoded.Hit.Point.X, 1e-9)
	assert.Nil(t, decoded.Region)
}
