package live

import (
	"encoding/json"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/squine/oscillo/internal/engine"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrBadPayload  = errors.New("invalid payload")
	ErrReadOnly    = errors.New("read-only session")
)

// isInput reports whether msgType drives the engine.
func isInput(msgType string) bool {
	switch msgType {
	case TypeModeSelect, TypeControlsUpdate,
		TypePointerDown, TypePointerMove, TypePointerUp,
		TypePlaybackToggle:
		return true
	}
	return false
}

// applyInput decodes an input message and applies it to eng.
func applyInput(eng *engine.Engine, msg *Message) error {
	switch msg.Type {
	case TypeModeSelect:
		var p ModeSelectPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		if p.Mode == nil {
			return fmt.Errorf("%w: mode is required", ErrBadPayload)
		}
		eng.SetMode(*p.Mode)

	case TypeControlsUpdate:
		var c engine.Controls
		if err := decodePayload(msg, &c); err != nil {
			return err
		}
		eng.ApplyControls(c)

	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		button, err := parseButton(p.Button)
		if err != nil {
			return err
		}
		pt := r2.Vec{X: p.X, Y: p.Y}
		switch msg.Type {
		case TypePointerDown:
			eng.PointerDown(pt, button)
		case TypePointerMove:
			eng.PointerMove(pt, button)
		default:
			eng.PointerUp(pt, button)
		}

	case TypePlaybackToggle:
		eng.TogglePlay()

	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return nil
}

func decodePayload(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: empty", ErrBadPayload)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return nil
}

func parseButton(s string) (engine.Button, error) {
	switch s {
	case "", "primary", "left":
		return engine.ButtonPrimary, nil
	case "secondary", "right":
		return engine.ButtonSecondary, nil
	default:
		return 0, fmt.Errorf("%w: unknown button %q", ErrBadPayload, s)
	}
}
