package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/squine/oscillo/internal/engine"
	"github.com/squine/oscillo/internal/typeid"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidID    = errors.New("invalid session id")
	ErrLimitReached = errors.New("session limit reached")
	ErrInvalidTicks = errors.New("tick count out of range")
	ErrLive         = errors.New("session is driven by a live room")
)

// MaxTicks bounds a single headless advance.
const MaxTicks = 600

// Session is one live engine.
type Session struct {
	ID        string
	CreatedAt time.Time
	Engine    *engine.Engine

	seq uint64
}

// Info is the JSON view of a session.
type Info struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	State     engine.State `json:"state"`
}

func (s *Session) Info() Info {
	return Info{ID: s.ID, CreatedAt: s.CreatedAt, State: s.Engine.State()}
}

// CreateOptions are the optional initial controls of a new session.
type CreateOptions struct {
	Mode  *engine.Mode `json:"mode,omitempty"`
	Sides *int         `json:"sides,omitempty"`
}

type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	settings engine.Settings
	max      int
	nextSeq  uint64
	onDelete []func(id string)
	isLive   func(id string) bool
}

func NewService(settings engine.Settings, maxSessions int) *Service {
	return &Service{
		sessions: make(map[string]*Session),
		settings: settings,
		max:      maxSessions,
	}
}

// OnDelete registers fn to run after a session is deleted.
func (s *Service) OnDelete(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDelete = append(s.onDelete, fn)
}

func (s *Service) Create(opts CreateOptions) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		return nil, ErrLimitReached
	}

	eng := engine.NewEngine(s.settings)
	if opts.Sides != nil {
		eng.SetSides(*opts.Sides)
	}
	if opts.Mode != nil {
		eng.SetMode(*opts.Mode)
	}

	s.nextSeq++
	sess := &Session{
		ID:        typeid.NewSessionID(),
		CreatedAt: time.Now().UTC(),
		Engine:    eng,
		seq:       s.nextSeq,
	}
	s.sessions[sess.ID] = sess

	slog.Info("session created", "session", sess.ID, "mode", eng.State().Mode)
	return sess, nil
}

func (s *Service) Get(id string) (*Session, error) {
	if err := typeid.Validate(id, typeid.PrefixSession); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Engine looks up the engine of a live session.
func (s *Service) Engine(id string) (*engine.Engine, bool) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, false
	}
	return sess.Engine, true
}

// List returns all sessions, oldest first.
func (s *Service) List() []Info {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	slices.SortFunc(sessions, func(a, b *Session) int {
		return cmp.Compare(a.seq, b.seq)
	})

	infos := make([]Info, len(sessions))
	for i, sess := range sessions {
		infos[i] = sess.Info()
	}
	return infos
}

func (s *Service) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.sessions, id)
	hooks := slices.Clone(s.onDelete)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(id)
	}

	slog.Info("session deleted", "session", id)
	return nil
}

// SetLiveCheck installs fn to report whether a session's frames are being
// driven by a live room.
func (s *Service) SetLiveCheck(fn func(id string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLive = fn
}

// Advance runs n frames headlessly and returns the last one. Sessions with
// a live room are refused: their frame driver already owns the clock.
func (s *Service) Advance(ctx context.Context, id string, n int) (*engine.Frame, error) {
	if n < 1 || n > MaxTicks {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidTicks, n, MaxTicks)
	}

	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	isLive := s.isLive
	s.mu.RUnlock()
	if isLive != nil && isLive(id) {
		return nil, ErrLive
	}

	var frame *engine.Frame
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("advance session: %w", err)
		}
		frame = sess.Engine.Tick()
	}
	return frame, nil
}
