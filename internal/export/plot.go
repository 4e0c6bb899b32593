package export

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/squine/oscillo/internal/engine"
)

var (
	colorTrace  = color.RGBA{R: 0xff, A: 0xff}
	colorCurve  = color.Black
	colorCenter = color.Gray{Y: 0x80}
)

// Export sizes
const (
	WaveformWidth  = 10 * vg.Inch
	WaveformHeight = 4 * vg.Inch
	CurveSize      = 5 * vg.Inch
)

// WaveformSeries maps trace sample points to plot coordinates: x is how
// many ticks ago the sample was taken (zero or negative), y is its height
// above the sweep center with up positive.
func WaveformSeries(heads []r2.Vec, s engine.Settings) plotter.XYs {
	pts := make(plotter.XYs, len(heads))
	for i, h := range heads {
		pts[i].X = -(h.X - s.RegionSize) / s.ScrollSpeed
		pts[i].Y = s.RegionSize/2 - h.Y
	}
	return pts
}

// WaveformPlot draws the oscillogram over the full visible window.
func WaveformPlot(heads []r2.Vec, s engine.Settings) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Waveform"
	p.X.Label.Text = "ticks ago"
	p.Y.Label.Text = "offset from center"
	p.X.Min, p.X.Max = -s.PlotWidth/s.ScrollSpeed, 0
	p.Y.Min, p.Y.Max = -s.RegionSize/2, s.RegionSize/2
	p.Add(plotter.NewGrid())

	if len(heads) == 0 {
		return p, nil
	}

	line, err := plotter.NewLine(WaveformSeries(heads, s))
	if err != nil {
		return nil, fmt.Errorf("waveform line: %w", err)
	}
	line.Width = vg.Points(1)
	line.Color = colorTrace
	p.Add(line)

	return p, nil
}

// CurvePlot draws a curve over the draw region, flipped so that up on the
// plot is up on screen. The axes grow past the region when the curve was
// dragged beyond it. The sweep center is marked with a cross.
func CurvePlot(c engine.Curve, region engine.DrawRegion) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Curve"
	b := c.Bounds().Union(region.Bounds())
	p.X.Min, p.X.Max = b.X, b.X+b.Width
	p.Y.Min, p.Y.Max = region.Size-(b.Y+b.Height), region.Size-b.Y

	for _, pts := range polylines(c, region.Size) {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("curve line: %w", err)
		}
		line.Width = vg.Points(1)
		line.Color = colorCurve
		p.Add(line)
	}

	center := region.Center()
	marker, err := plotter.NewScatter(plotter.XYs{{X: center.X, Y: region.Size - center.Y}})
	if err != nil {
		return nil, fmt.Errorf("center marker: %w", err)
	}
	marker.GlyphStyle.Shape = draw.CrossGlyph{}
	marker.GlyphStyle.Color = colorCenter
	marker.GlyphStyle.Radius = vg.Points(4)
	p.Add(marker)

	return p, nil
}

// polylines joins consecutive connected segments into point runs.
func polylines(c engine.Curve, size float64) []plotter.XYs {
	flip := func(v r2.Vec) plotter.XY { return plotter.XY{X: v.X, Y: size - v.Y} }

	var out []plotter.XYs
	var run plotter.XYs
	for i, s := range c {
		if i == 0 || s.P1 != c[i-1].P2 {
			if len(run) > 0 {
				out = append(out, run)
			}
			run = plotter.XYs{flip(s.P1)}
		}
		run = append(run, flip(s.P2))
	}
	if len(run) > 0 {
		out = append(out, run)
	}
	return out
}

// WritePNG renders p as PNG into w.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
