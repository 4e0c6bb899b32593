package engine

import "gonum.org/v1/gonum/spatial/r2"

// Trace is the scrolling oscillogram. Each sample is stored as a segment
// from its own point (P1) to the point of the sample before it (P2), so the
// samples draw as one connected polyline. Samples are ordered oldest first.
//
// A Trace is EMPTY until its first sample; the first sample is a flat stub
// of length scrollSpeed. It never reaches a terminal state and returns to
// EMPTY only through Reset.
type Trace struct {
	samples []LineSegment
}

// Tick scrolls the trace and appends the sample for this frame.
//
// Every sample moves right by scrollSpeed, samples whose leading (largest)
// x passes visibleWidth are evicted, then, if ok, a new sample is appended
// at originX with height y.
func (t *Trace) Tick(y float64, ok bool, originX, scrollSpeed, visibleWidth float64) {
	shift := r2.Vec{X: scrollSpeed}
	kept := t.samples[:0]
	for _, s := range t.samples {
		s = s.Translate(shift)
		if max(s.P1.X, s.P2.X) > visibleWidth {
			continue
		}
		kept = append(kept, s)
	}
	clear(t.samples[len(kept):])
	t.samples = kept

	if !ok {
		return
	}

	head := r2.Vec{X: originX, Y: y}
	tail := r2.Vec{X: originX + scrollSpeed, Y: y}
	if n := len(t.samples); n > 0 {
		tail = t.samples[n-1].P1
	}
	t.samples = append(t.samples, LineSegment{P1: head, P2: tail})
}

// Len returns the number of stored samples.
func (t *Trace) Len() int {
	return len(t.samples)
}

// Samples returns a copy of the sample segments, oldest first.
func (t *Trace) Samples() Curve {
	return Curve(t.samples).Clone()
}

// Heads returns the sample points (P1 of each segment), oldest first.
func (t *Trace) Heads() []r2.Vec {
	out := make([]r2.Vec, len(t.samples))
	for i, s := range t.samples {
		out[i] = s.P1
	}
	return out
}

// Reset empties the trace.
func (t *Trace) Reset() {
	t.samples = nil
}
