package live

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// TokenAuthorizer checks that a token controls a session.
type TokenAuthorizer interface {
	Authorize(token, sessionID string) error
}

type Handler struct {
	hub            *Hub
	tokens         TokenAuthorizer
	originPatterns []string
}

// NewHandler serves websocket connections for hub. origins are full
// origins such as "http://localhost:5173".
func NewHandler(hub *Hub, tokens TokenAuthorizer, origins []string) *Handler {
	return &Handler{
		hub:            hub,
		tokens:         tokens,
		originPatterns: originPatterns(origins),
	}
}

// ServeWS upgrades /ws/sessions/{sessionId}. A ?token= query parameter
// with a control token for the session grants input rights; without one
// the client only watches.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	if _, ok := h.hub.lookup(sessionID); !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	canControl := false
	if token := r.URL.Query().Get("token"); token != "" {
		if err := h.tokens.Authorize(token, sessionID); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		canControl = true
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, sessionID, uuid.New().String(), canControl)
	if !h.hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// originPatterns reduces origins to the host patterns websocket.Accept
// matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
