package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/squine/oscillo/internal/engine"
)

// cursorStaleAfter drops cursors of clients that stopped moving.
const cursorStaleAfter = 30 * time.Second

// EngineLookup resolves a session id to its engine.
type EngineLookup func(sessionID string) (*engine.Engine, bool)

// Room is the set of clients watching one session. It owns the frame
// driver of that session while at least one client is connected.
type Room struct {
	sessionID string
	engine    *engine.Engine
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager

	stop context.CancelFunc
	done chan struct{}
}

func NewRoom(sessionID string, eng *engine.Engine) *Room {
	return &Room{
		sessionID: sessionID,
		engine:    eng,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(cursorStaleAfter),
	}
}

// Hub routes clients to rooms. Room membership changes are serialized
// through Run; message handling and frame broadcasts read rooms under mu.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]*Room // sessionID -> room
	lookup   EngineLookup
	interval time.Duration

	register   chan *Client
	unregister chan *Client
	closeRoom  chan string
	quit       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a hub whose rooms tick their engine every interval.
func NewHub(lookup EngineLookup, interval time.Duration) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		lookup:     lookup,
		interval:   interval,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		closeRoom:  make(chan string),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case sessionID := <-h.closeRoom:
			h.shutdownRooms(sessionID)
		case <-h.quit:
			h.shutdownRooms("")
			return
		}
	}
}

// Stop closes every room and waits for Run to return.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
	<-h.done
}

// Register adds a client to its session's room. It reports false once the
// hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// CloseRoom disconnects every client of a session, e.g. after deletion.
func (h *Hub) CloseRoom(sessionID string) {
	select {
	case h.closeRoom <- sessionID:
	case <-h.done:
	}
}

// HasRoom reports whether sessionID has an open room.
func (h *Hub) HasRoom(sessionID string) bool {
	return h.room(sessionID) != nil
}

// Rooms returns the number of open rooms.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) addClient(client *Client) {
	eng, ok := h.lookup(client.SessionID)
	if !ok {
		client.Send(errorMessage("session not found"))
		client.close()
		return
	}

	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		room = NewRoom(client.SessionID, eng)
		h.rooms[client.SessionID] = room
		h.startDriver(room)
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	if welcome, err := newMessage(TypeWelcome, WelcomePayload{
		ClientID:   client.ClientID,
		SessionID:  client.SessionID,
		CanControl: client.CanControl,
		State:      eng.State(),
	}); err == nil {
		client.Send(welcome)
	}

	// Send current presence state to new client
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	if joinMsg, err := newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID:   client.ClientID,
		CanControl: client.CanControl,
	}); err == nil {
		h.broadcastToRoom(client.SessionID, joinMsg, client.ClientID)
	}

	slog.Info("client joined", "client", client.ClientID, "session", client.SessionID, "control", client.CanControl)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		client.close()
		return
	}

	delete(room.clients, client.ClientID)
	client.close()
	room.presence.Remove(client.ClientID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.SessionID)
		room.stop()
	}
	h.mu.Unlock()

	if empty {
		<-room.done
		slog.Info("room closed", "session", client.SessionID)
	} else if leaveMsg, err := newMessage(TypePresenceLeave, PresenceLeavePayload{
		ClientID: client.ClientID,
	}); err == nil {
		h.broadcastToRoom(client.SessionID, leaveMsg, "")
	}

	slog.Info("client left", "client", client.ClientID, "session", client.SessionID)
}

// shutdownRooms closes the room of sessionID, or every room when empty.
func (h *Hub) shutdownRooms(sessionID string) {
	h.mu.Lock()
	var closed []*Room
	for id, room := range h.rooms {
		if sessionID != "" && id != sessionID {
			continue
		}
		delete(h.rooms, id)
		room.stop()
		for _, c := range room.clients {
			c.close()
		}
		closed = append(closed, room)
	}
	h.mu.Unlock()

	for _, room := range closed {
		<-room.done
		slog.Info("room closed", "session", room.sessionID)
	}
}

func (h *Hub) startDriver(room *Room) {
	ctx, cancel := context.WithCancel(context.Background())
	room.stop = cancel
	room.done = make(chan struct{})
	go h.drive(ctx, room)
}

// drive ticks the room's engine once per interval and streams each frame.
func (h *Hub) drive(ctx context.Context, room *Room) {
	defer close(room.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := room.engine.Tick()
			msg, err := newMessage(TypeFrame, FramePayload{
				Index:      frame.Index,
				SweepAngle: frame.SweepAngle,
				Commands:   engine.CompileDrawCommands(frame),
			})
			if err != nil {
				slog.Error("marshal frame", "error", err, "session", room.sessionID)
				continue
			}
			msg.SessionID = room.sessionID
			msg.Seq = int64(frame.Index)
			h.broadcastToRoom(room.sessionID, msg, "")
		}
	}
}

func (h *Hub) room(sessionID string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[sessionID]
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch {
	case msg.Type == TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case isInput(msg.Type):
		h.handleInput(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		sender.Send(errorMessage(ErrUnknownType.Error()))
	}
}

func (h *Hub) handleInput(sender *Client, msg *Message) {
	if !sender.CanControl {
		sender.Send(errorMessage(ErrReadOnly.Error()))
		return
	}

	room := h.room(sender.SessionID)
	if room == nil {
		return
	}

	if err := applyInput(room.engine, msg); err != nil {
		slog.Warn("rejected input", "error", err, "type", msg.Type, "client", sender.ClientID)
		sender.Send(errorMessage(err.Error()))
		return
	}

	// Moves are visible in the next frame; everything else also changes
	// the scalar state shown by controls.
	if msg.Type == TypePointerMove {
		return
	}
	state := room.engine.State()
	stateMsg, err := newMessage(TypeState, state)
	if err != nil {
		slog.Error("marshal state", "error", err)
		return
	}
	stateMsg.SessionID = sender.SessionID
	stateMsg.Seq = int64(state.Frame)
	h.broadcastToRoom(sender.SessionID, stateMsg, "")
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		sender.Send(errorMessage("invalid presence payload"))
		return
	}

	room := h.room(sender.SessionID)
	if room == nil {
		return
	}

	room.presence.Update(sender.ClientID, presence.Cursor)

	// Broadcast to other clients in room
	outMsg, err := newMessage(TypePresenceUpdate, PresencePayload{
		ClientID: sender.ClientID,
		Cursor:   presence.Cursor,
	})
	if err != nil {
		return
	}
	h.broadcastToRoom(sender.SessionID, outMsg, sender.ClientID)
}

// broadcastToRoom encodes msg once and queues it for every client in the
// room except excludeClientID.
func (h *Hub) broadcastToRoom(sessionID string, msg *Message, excludeClientID string) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[sessionID]
	if !ok {
		return
	}
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.sendBytes(data)
		}
	}
}
