package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squine/oscillo/internal/engine"
)

func TestRunWritesExports(t *testing.T) {
	out := filepath.Join(t.TempDir(), "render_x")
	paths, err := run(options{mode: "polygon", sides: 6, rotation: 0.25, frequency: 2, ticks: 40, out: out})
	require.NoError(t, err)
	assert.Len(t, paths, 3)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestNewEngineAppliesFlags(t *testing.T) {
	eng, err := newEngine(options{mode: "polygon", sides: 7, rotation: 0.5, frequency: 3})
	require.NoError(t, err)

	st := eng.State()
	assert.Equal(t, engine.ModePolygon, st.Mode)
	assert.Equal(t, 7, st.Sides)
	assert.Equal(t, 0.5, st.Rotation)
	assert.Equal(t, 3.0, st.Frequency)
	assert.Equal(t, 7, st.CurveSegments)
}

func TestRunRejects(t *testing.T) {
	tests := []struct {
		name string
		opts options
	}{
		{"unknown_mode", options{mode: "spiral", frequency: 1}},
		{"freehand", options{mode: "freehand", frequency: 1}},
		{"negative_ticks", options{mode: "circle", frequency: 1, ticks: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.out = t.TempDir()
			_, err := run(tt.opts)
			assert.Error(t, err)
		})
	}
}
