package config

import (
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squine/oscillo/internal/engine"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 60, cfg.TickRate)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Origins())

	s := cfg.EngineSettings()
	assert.Equal(t, 500.0, s.RegionSize)
	assert.Equal(t, 1000.0, s.PlotWidth)
	assert.InDelta(t, engine.DefaultSweepStep, s.SweepStep, 1e-12)
	assert.Equal(t, 2.0, s.ScrollSpeed)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REGION_SIZE", "800")
	t.Setenv("SWEEP_STEP_TURNS", "0.25")
	t.Setenv("TICK_RATE", "30")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 800.0, cfg.EngineSettings().RegionSize)
	assert.InDelta(t, math.Pi/2, cfg.EngineSettings().SweepStep, 1e-12)
	assert.Equal(t, time.Second/30, cfg.TickInterval())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero_region", "REGION_SIZE", "0"},
		{"negative_plot", "PLOT_WIDTH", "-10"},
		{"zero_tick_rate", "TICK_RATE", "0"},
		{"full_turn_step", "SWEEP_STEP_TURNS", "1"},
		{"zero_scroll", "SCROLL_SPEED", "0"},
		{"bad_level", "LOG_LEVEL", "loud"},
		{"zero_sessions", "MAX_SESSIONS", "0"},
		{"not_a_number", "REGION_SIZE", "big"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
