package live

import (
	"encoding/json"

	"github.com/squine/oscillo/internal/engine"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type WelcomePayload struct {
	ClientID   string       `json:"clientId"`
	SessionID  string       `json:"sessionId"`
	CanControl bool         `json:"canControl"`
	State      engine.State `json:"state"`
}

type FramePayload struct {
	Index      int                  `json:"index"`
	SweepAngle float64              `json:"sweepAngle"`
	Commands   []engine.DrawCommand `json:"commands"`
}

type ModeSelectPayload struct {
	Mode *engine.Mode `json:"mode"`
}

// PointerPayload is a pointer event in draw-region coordinates. Button is
// "primary" (default) or "secondary".
type PointerPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button,omitempty"`
}

type PresencePayload struct {
	ClientID string     `json:"clientId,omitempty"`
	Cursor   *CursorPos `json:"cursor,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID   string `json:"clientId"`
	CanControl bool   `json:"canControl"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Server to client
	TypeFrame = "frame"
	TypeState = "state"

	// Engine input
	TypeModeSelect     = "mode.select"
	TypeControlsUpdate = "controls.update"
	TypePointerDown    = "pointer.down"
	TypePointerMove    = "pointer.move"
	TypePointerUp      = "pointer.up"
	TypePlaybackToggle = "playback.toggle"
)

// newMessage marshals payload into a message of the given type.
func newMessage(msgType string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Payload: data}, nil
}

func errorMessage(text string) *Message {
	data, _ := json.Marshal(ErrorPayload{Message: text})
	return &Message{Type: TypeError, Payload: data}
}
