package engine

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// DefaultRegionSize is the side of the draw region.
	DefaultRegionSize = 500
	// DefaultPlotWidth is the width of the waveform area right of the divider.
	DefaultPlotWidth = 1000
	// DefaultSweepStep is the sweep advance per tick at frequency 1.
	DefaultSweepStep = 0.016 * 2 * math.Pi
	// DefaultScrollSpeed is the waveform scroll per tick.
	DefaultScrollSpeed = 2

	// MaxFrequency bounds the frequency multiplier.
	MaxFrequency = 4
)

// Settings are the constants an Engine is built with.
type Settings struct {
	RegionSize  float64 // side S of the square draw region
	PlotWidth   float64 // waveform area width; the plot spans [S, S+PlotWidth]
	SweepStep   float64 // radians per tick at frequency 1
	ScrollSpeed float64 // waveform scroll per tick
}

// DefaultSettings returns the canonical 500-unit setup.
func DefaultSettings() Settings {
	return Settings{
		RegionSize:  DefaultRegionSize,
		PlotWidth:   DefaultPlotWidth,
		SweepStep:   DefaultSweepStep,
		ScrollSpeed: DefaultScrollSpeed,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if !(s.RegionSize > 0) {
		s.RegionSize = d.RegionSize
	}
	if !(s.PlotWidth > 0) {
		s.PlotWidth = d.PlotWidth
	}
	if !(s.SweepStep > 0) {
		s.SweepStep = d.SweepStep
	}
	if !(s.ScrollSpeed > 0) {
		s.ScrollSpeed = d.ScrollSpeed
	}
	return s
}

// Button identifies the pointer button of an input event.
type Button int

const (
	// ButtonPrimary draws freehand strokes.
	ButtonPrimary Button = iota
	// ButtonSecondary drags the drawing around.
	ButtonSecondary
)

// Controls carries optional control changes. Nil fields are left alone.
type Controls struct {
	Rotation  *float64 `json:"rotation,omitempty"`
	Sides     *int     `json:"sides,omitempty"`
	Frequency *float64 `json:"frequency,omitempty"`
}

// State is a snapshot of the engine's scalar state.
type State struct {
	Mode          Mode    `json:"mode"`
	Sides         int     `json:"sides"`
	Rotation      float64 `json:"rotation"`
	Frequency     float64 `json:"frequency"`
	SweepAngle    float64 `json:"sweepAngle"`
	Frame         int     `json:"frame"`
	Playing       bool    `json:"playing"`
	Drawing       bool    `json:"drawing"`
	CurveSegments int     `json:"curveSegments"`
	TraceSamples  int     `json:"traceSamples"`
	RegionSize    float64 `json:"regionSize"`
	PlotWidth     float64 `json:"plotWidth"`
}

// Engine owns the curve, rotation, sweep and waveform of one session.
// Inputs and ticks may come from different goroutines; a single mutex
// serializes them so a tick never sees a curve mid-mutation.
type Engine struct {
	mu sync.Mutex

	settings Settings
	region   DrawRegion

	// Mode and controls
	mode      Mode
	sides     int
	frequency float64

	// Curves and trace
	store Store

	// Sweep and playback
	angle   float64
	frame   int
	playing bool
	hit     Hit
	hasHit  bool

	// Pointer state
	drawing  bool // freehand stroke in progress
	dragging bool // secondary-button translate in progress
	origin   r2.Vec
	last     r2.Vec
}

// NewEngine creates an engine in circle mode, unrotated, at frequency 1,
// playing. Non-positive settings fall back to DefaultSettings.
func NewEngine(settings Settings) *Engine {
	settings = settings.withDefaults()
	e := &Engine{
		settings:  settings,
		region:    DrawRegion{Size: settings.RegionSize},
		sides:     MinSides,
		frequency: 1,
		playing:   true,
	}
	e.enterMode(ModeCircle)
	return e
}

// --- Commands ---

// SetMode switches mode with a full reset: curves, trace and rotation are
// cleared and the base curve is regenerated (or left empty for freehand).
func (e *Engine) SetMode(m Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enterMode(m)
}

// SetSides sets the polygon side count, clamped to [MinSides, MaxSides].
// In polygon mode a changed count regenerates the polygon with a full reset;
// resending the current count is a no-op.
func (e *Engine) SetSides(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setSides(n)
}

// SetRotation sets the rotation fraction (clamped to [0,1]) and recomputes
// the rotated curve before returning.
func (e *Engine) SetRotation(fraction float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Rotate(fraction, e.region.Center())
}

// SetFrequency sets the sweep frequency multiplier, clamped to [0, MaxFrequency].
func (e *Engine) SetFrequency(f float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setFrequency(f)
}

// ApplyControls applies all non-nil controls under one lock. Sides is applied
// first so a polygon reset does not discard a rotation sent alongside it.
func (e *Engine) ApplyControls(c Controls) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c.Sides != nil {
		e.setSides(*c.Sides)
	}
	if c.Rotation != nil {
		e.store.Rotate(*c.Rotation, e.region.Center())
	}
	if c.Frequency != nil {
		e.setFrequency(*c.Frequency)
	}
}

// PointerDown starts a freehand stroke (primary button, freehand mode) or a
// translate drag (secondary button). Points outside the draw region are
// ignored.
func (e *Engine) PointerDown(p r2.Vec, b Button) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.region.Contains(p) {
		return
	}

	switch {
	case b == ButtonPrimary && e.mode == ModeFreehand:
		e.store.Reset()
		e.hasHit = false
		e.drawing = true
	case b == ButtonSecondary:
		e.dragging = true
	}
	e.origin = p
	e.last = p
}

// PointerMove extends the stroke or moves the drawing by the pointer delta.
// Points outside the draw region are ignored.
func (e *Engine) PointerMove(p r2.Vec, b Button) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.region.Contains(p) {
		return
	}

	switch {
	case b == ButtonPrimary && e.drawing:
		e.store.Append(LineSegment{P1: e.last, P2: p})
	case b == ButtonSecondary && e.dragging:
		e.store.Translate(r2.Sub(p, e.last))
	default:
		return
	}
	e.last = p
}

// PointerUp finishes the current gesture. A stroke is closed back to its
// origin when released inside the region. Releasing a drag while rotated
// keeps the rotated drawing as the new base. Any release resets rotation.
func (e *Engine) PointerUp(p r2.Vec, b Button) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch b {
	case ButtonPrimary:
		if e.drawing && e.region.Contains(p) {
			e.store.Append(LineSegment{P1: e.origin, P2: p})
		}
		e.drawing = false
	case ButtonSecondary:
		if e.dragging {
			e.store.CommitRotation()
		}
		e.dragging = false
	}
	e.store.Rotate(0, e.region.Center())
}

// Play resumes the sweep.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = true
}

// Pause freezes the sweep; ticks keep rendering.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

// TogglePlay toggles play/pause state.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = !e.playing
}

// Tick advances one animation frame and returns its render data.
// This is called once per frame by the frame driver.
//
// The sweep angle advances by SweepStep*frequency. Unless a stroke is in
// progress or there is no curve, the active curve is intersected and the
// waveform scrolls and takes the new sample.
func (e *Engine) Tick() *Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playing {
		e.frame++
		e.angle = wrapAngle(e.angle + e.settings.SweepStep*e.frequency)
		e.sample()
	}

	return e.frameLocked()
}

// --- Queries ---

// Render returns the current render data without advancing.
func (e *Engine) Render() *Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameLocked()
}

// State returns a snapshot of the scalar state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return State{
		Mode:          e.mode,
		Sides:         e.sides,
		Rotation:      e.store.Rotation(),
		Frequency:     e.frequency,
		SweepAngle:    e.angle,
		Frame:         e.frame,
		Playing:       e.playing,
		Drawing:       e.drawing,
		CurveSegments: len(e.store.Base()),
		TraceSamples:  e.store.Trace().Len(),
		RegionSize:    e.settings.RegionSize,
		PlotWidth:     e.settings.PlotWidth,
	}
}

// Settings returns the settings the engine runs with.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Region returns the draw region.
func (e *Engine) Region() DrawRegion {
	return e.region
}

// ActiveCurve returns a copy of the curve currently rendered and intersected.
func (e *Engine) ActiveCurve() Curve {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Active().Clone()
}

// Waveform returns the waveform sample points, oldest first.
func (e *Engine) Waveform() []r2.Vec {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Trace().Heads()
}

// --- Internals (caller holds mu) ---

func (e *Engine) enterMode(m Mode) {
	e.store.Reset()
	e.mode = m
	e.drawing = false
	e.dragging = false
	e.hasHit = false
	if m.IsShape() {
		e.store.SetBase(Generate(m, e.sides, e.region.Center(), e.region.ShapeRadius()))
	}
}

func (e *Engine) setSides(n int) {
	n = ClampSides(n)
	if n == e.sides {
		return
	}
	e.sides = n
	if e.mode == ModePolygon {
		e.enterMode(ModePolygon)
	}
}

func (e *Engine) setFrequency(f float64) {
	if !(f > 0) {
		f = 0
	}
	e.frequency = min(f, MaxFrequency)
}

// sample runs the intersector and feeds the waveform for the current angle.
func (e *Engine) sample() {
	e.hasHit = false
	if e.drawing || len(e.store.Base()) == 0 {
		return
	}

	hit, ok := Intersect(e.store.Active(), e.region.Center(), e.angle, e.region.MaxRadius())
	e.hit, e.hasHit = hit, ok

	s := e.settings
	e.store.Trace().Tick(hit.Point.Y, ok, s.RegionSize, s.ScrollSpeed, s.RegionSize+s.PlotWidth)
}

func (e *Engine) frameLocked() *Frame {
	f := &Frame{
		Index:      e.frame,
		Mode:       e.mode,
		Region:     e.region,
		Width:      e.settings.RegionSize + e.settings.PlotWidth,
		Center:     e.region.Center(),
		SweepAngle: e.angle,
		Ray:        SweepRay(e.region.Center(), e.angle, e.region.MaxRadius()),
		Curve:      e.store.Active().Clone(),
		Trace:      e.store.Trace().Samples(),
	}
	if e.drawing {
		preview := LineSegment{P1: e.origin, P2: e.last}
		f.Preview = &preview
	}
	if e.hasHit {
		hit := e.hit
		f.Hit = &hit
	}
	return f
}

// wrapAngle maps a into [0, 2π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
