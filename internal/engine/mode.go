package engine

import "fmt"

// Mode selects how the base curve is produced.
type Mode int

const (
	ModeCircle Mode = iota
	ModeSquare
	ModeTriangle
	ModePolygon
	ModeFreehand
)

var modeNames = [...]string{
	ModeCircle:   "circle",
	ModeSquare:   "square",
	ModeTriangle: "triangle",
	ModePolygon:  "polygon",
	ModeFreehand: "freehand",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// IsShape reports whether the mode generates its curve.
func (m Mode) IsShape() bool {
	return m != ModeFreehand
}

func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(modeNames[m]), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
