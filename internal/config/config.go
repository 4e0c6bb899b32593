package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/squine/oscillo/internal/engine"
)

type Config struct {
	Port           int           `envconfig:"PORT" default:"8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	RegionSize     float64       `envconfig:"REGION_SIZE" default:"500"`
	PlotWidth      float64       `envconfig:"PLOT_WIDTH" default:"1000"`
	TickRate       int           `envconfig:"TICK_RATE" default:"60"`
	SweepStepTurns float64       `envconfig:"SWEEP_STEP_TURNS" default:"0.016"`
	ScrollSpeed    float64       `envconfig:"SCROLL_SPEED" default:"2"`
	JWTSecret      string        `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	AllowedOrigins string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	MaxSessions    int           `envconfig:"MAX_SESSIONS" default:"64"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine or the frame driver cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if !(c.RegionSize > 0) {
		errs = append(errs, fmt.Errorf("REGION_SIZE must be positive, got %v", c.RegionSize))
	}
	if !(c.PlotWidth > 0) {
		errs = append(errs, fmt.Errorf("PLOT_WIDTH must be positive, got %v", c.PlotWidth))
	}
	if c.TickRate <= 0 || c.TickRate > 240 {
		errs = append(errs, fmt.Errorf("TICK_RATE must be in 1..240, got %d", c.TickRate))
	}
	if !(c.SweepStepTurns > 0) || c.SweepStepTurns >= 1 {
		errs = append(errs, fmt.Errorf("SWEEP_STEP_TURNS must be in (0,1), got %v", c.SweepStepTurns))
	}
	if !(c.ScrollSpeed > 0) {
		errs = append(errs, fmt.Errorf("SCROLL_SPEED must be positive, got %v", c.ScrollSpeed))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %v", c.TokenTTL))
	}
	if c.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("MAX_SESSIONS must be positive, got %d", c.MaxSessions))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EngineSettings converts the engine-related fields.
func (c *Config) EngineSettings() engine.Settings {
	return engine.Settings{
		RegionSize:  c.RegionSize,
		PlotWidth:   c.PlotWidth,
		SweepStep:   c.SweepStepTurns * 2 * math.Pi,
		ScrollSpeed: c.ScrollSpeed,
	}
}

// TickInterval is the frame driver period.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
