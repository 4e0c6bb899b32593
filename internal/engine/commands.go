package engine

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Frame is the render data of one tick.
type Frame struct {
	Index      int          `json:"index"`
	Mode       Mode         `json:"mode"`
	Region     DrawRegion   `json:"-"`
	Width      float64      `json:"width"` // draw region plus waveform area
	Center     r2.Vec       `json:"center"`
	SweepAngle float64      `json:"sweepAngle"`
	Ray        LineSegment  `json:"ray"`
	Curve      Curve        `json:"curve"`             // active curve, base or rotated
	Preview    *LineSegment `json:"preview,omitempty"` // stroke origin to pointer while drawing
	Hit        *Hit         `json:"hit,omitempty"`
	Trace      Curve        `json:"trace"`
}

// Layer names, also used as colors by the reference frontend.
const (
	LayerCurve     = "curve"
	LayerPreview   = "preview"
	LayerCrosshair = "crosshair"
	LayerDivider   = "divider"
	LayerAxis      = "axis"
	LayerProjector = "projector"
	LayerMarker    = "marker"
	LayerTrace     = "trace"
)

const (
	colorInk   = "#000000"
	colorGuide = "#808080"
	colorAxis  = "#b6b6b6"
	colorSweep = "#ff0000"

	crosshairHalf = 10
	markerRadius  = 3
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "path"
	Layer       string        `json:"layer"`                 // What the path depicts
	Path        []PathCommand `json:"path,omitempty"`        // Path data
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["A", cx, cy, r, a0, a1], ["Z"].
type PathCommand []interface{}

// CompileDrawCommands generates the draw command buffer for a frame.
// Commands are in painter's order (back to front). Coordinates keep full
// precision; the canvas quantizes them.
func CompileDrawCommands(f *Frame) []DrawCommand {
	if f == nil {
		return nil
	}

	size := f.Region.Size
	var commands []DrawCommand

	if len(f.Curve) > 0 {
		commands = append(commands, stroke(LayerCurve, colorInk, segmentsPath(f.Curve)))
	}
	if f.Preview != nil {
		commands = append(commands, stroke(LayerPreview, colorInk, segmentsPath(Curve{*f.Preview})))
	}

	c := f.Center
	commands = append(commands, stroke(LayerCrosshair, colorGuide, segmentsPath(Curve{
		Seg(c.X-crosshairHalf, c.Y, c.X+crosshairHalf, c.Y),
		Seg(c.X, c.Y-crosshairHalf, c.X, c.Y+crosshairHalf),
	})))
	commands = append(commands,
		stroke(LayerDivider, colorGuide, segmentsPath(Curve{Seg(size, 0, size, size)})),
		stroke(LayerAxis, colorAxis, segmentsPath(Curve{Seg(size+1, size/2, f.Width, size/2)})),
	)

	if f.Hit != nil {
		p := f.Hit.Point
		commands = append(commands,
			stroke(LayerProjector, colorSweep, segmentsPath(Curve{
				{P1: c, P2: p},
				{P1: p, P2: r2.Vec{X: size, Y: p.Y}},
			})),
			DrawCommand{
				Op:    "path",
				Layer: LayerMarker,
				Path:  []PathCommand{{"A", p.X, p.Y, float64(markerRadius), 0.0, 2 * math.Pi}},
				Fill:  colorSweep,
			},
		)
	}

	if len(f.Trace) > 0 {
		commands = append(commands, stroke(LayerTrace, colorSweep, segmentsPath(f.Trace)))
	}

	return commands
}

func stroke(layer, color string, path []PathCommand) DrawCommand {
	return DrawCommand{
		Op:          "path",
		Layer:       layer,
		Path:        path,
		Stroke:      color,
		StrokeWidth: 1,
	}
}

// segmentsPath emits one move/line pair per segment, skipping the move when
// a segment starts where the previous one ended.
func segmentsPath(c Curve) []PathCommand {
	path := make([]PathCommand, 0, len(c)+1)
	var pen r2.Vec
	for i, s := range c {
		if i == 0 || s.P1 != pen {
			path = append(path, PathCommand{"M", s.P1.X, s.P1.Y})
		}
		path = append(path, PathCommand{"L", s.P2.X, s.P2.Y})
		pen = s.P2
	}
	return path
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
