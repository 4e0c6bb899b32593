package export

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/squine/oscillo/internal/engine"
)

// WaveformChart builds an interactive line chart of the same series as
// WaveformPlot.
func WaveformChart(heads []r2.Vec, s engine.Settings, subtitle string) *charts.Line {
	pts := WaveformSeries(heads, s)
	data := make([]opts.LineData, 0, len(pts))
	for _, pt := range pts {
		data = append(data, opts.LineData{Value: []interface{}{pt.X, pt.Y}})
	}

	half := s.RegionSize / 2
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Waveform", Width: "1200px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Waveform", Subtitle: fmt.Sprintf("%s samples=%d", subtitle, len(pts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: -s.PlotWidth / s.ScrollSpeed, Max: 0, Name: "ticks ago", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: -half, Max: half, Name: "offset", NameLocation: "middle", NameGap: 40}),
	)
	line.AddSeries("waveform", data)
	return line
}
