// Command render runs an engine headlessly and writes its exports.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/squine/oscillo/internal/engine"
	"github.com/squine/oscillo/internal/export"
	"github.com/squine/oscillo/internal/typeid"
)

type options struct {
	mode      string
	sides     int
	rotation  float64
	frequency float64
	ticks     int
	out       string
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "circle", "curve mode: circle, square, triangle or polygon")
	flag.IntVar(&opts.sides, "sides", engine.MinSides, "polygon side count")
	flag.Float64Var(&opts.rotation, "rotation", 0, "rotation as a fraction of a turn in [0, 1]")
	flag.Float64Var(&opts.frequency, "frequency", 1, "sweep frequency multiplier")
	flag.IntVar(&opts.ticks, "ticks", 500, "frames to run before exporting")
	flag.StringVar(&opts.out, "out", "", "output directory (default ./<render id>)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	paths, err := run(opts)
	if err != nil {
		slog.Error("render failed", "error", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}

func run(opts options) ([]string, error) {
	eng, err := newEngine(opts)
	if err != nil {
		return nil, err
	}

	if opts.ticks < 0 {
		return nil, fmt.Errorf("ticks must not be negative, got %d", opts.ticks)
	}
	for range opts.ticks {
		eng.Tick()
	}

	out := opts.out
	if out == "" {
		out = filepath.Join(".", typeid.NewRenderID())
	}

	st := eng.State()
	slog.Info("rendering", "mode", st.Mode, "frame", st.Frame, "samples", st.TraceSamples, "out", out)
	return export.WriteFiles(out, eng, filepath.Base(out))
}

func newEngine(opts options) (*engine.Engine, error) {
	mode, err := engine.ParseMode(opts.mode)
	if err != nil {
		return nil, err
	}
	if !mode.IsShape() {
		return nil, fmt.Errorf("mode %s needs pointer input and cannot be rendered headlessly", mode)
	}

	eng := engine.NewEngine(engine.DefaultSettings())
	eng.ApplyControls(engine.Controls{Sides: &opts.sides})
	eng.SetMode(mode)
	eng.ApplyControls(engine.Controls{Rotation: &opts.rotation, Frequency: &opts.frequency})
	return eng, nil
}
