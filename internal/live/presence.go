package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// PresenceManager tracks where each client in a room points.
// Cursors older than staleAfter are left out of state snapshots.
type PresenceManager struct {
	mu         sync.RWMutex
	cursors    map[string]cursor // clientID -> last cursor
	staleAfter time.Duration
	now        func() time.Time
}

type cursor struct {
	pos  CursorPos
	seen time.Time
}

func NewPresenceManager(staleAfter time.Duration) *PresenceManager {
	return &PresenceManager{
		cursors:    make(map[string]cursor),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Update records the cursor of clientID. A nil cursor clears it.
func (pm *PresenceManager) Update(clientID string, pos *CursorPos) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pos == nil {
		delete(pm.cursors, clientID)
		return
	}
	pm.cursors[clientID] = cursor{pos: *pos, seen: pm.now()}
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.cursors, clientID)
}

// Snapshot returns the live cursors keyed by client id.
func (pm *PresenceManager) Snapshot() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	now := pm.now()
	out := make(map[string]*PresencePayload, len(pm.cursors))
	for id, c := range pm.cursors {
		if pm.staleAfter > 0 && now.Sub(c.seen) > pm.staleAfter {
			continue
		}
		pos := c.pos
		out[id] = &PresencePayload{ClientID: id, Cursor: &pos}
	}
	return out
}

func (pm *PresenceManager) StateMessage() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: pm.Snapshot()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
