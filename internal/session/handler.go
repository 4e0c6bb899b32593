package session

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/squine/oscillo/internal/auth"
	"github.com/squine/oscillo/internal/engine"
)

type Handler struct {
	service *Service
	tokens  *auth.Service
}

func NewHandler(service *Service, tokens *auth.Service) *Handler {
	return &Handler{service: service, tokens: tokens}
}

// RegisterRoutes mounts the session API on r. Mutating routes require a
// control token for the session.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	control := func(fn http.HandlerFunc) http.Handler {
		return h.tokens.RequireControl(fn)
	}

	r.HandleFunc("/sessions", h.List).Methods("GET")
	r.HandleFunc("/sessions", h.Create).Methods("POST")
	r.HandleFunc("/sessions/{sessionId}", h.Get).Methods("GET")
	r.Handle("/sessions/{sessionId}", control(h.Delete)).Methods("DELETE")
	r.Handle("/sessions/{sessionId}/mode", control(h.SetMode)).Methods("PUT")
	r.Handle("/sessions/{sessionId}/controls", control(h.SetControls)).Methods("PUT")
	r.Handle("/sessions/{sessionId}/ticks", control(h.Advance)).Methods("POST")
	r.HandleFunc("/sessions/{sessionId}/frame", h.Frame).Methods("GET")
}

type createResponse struct {
	Session Info   `json:"session"`
	Token   string `json:"token"`
}

type modeRequest struct {
	Mode *engine.Mode `json:"mode"`
}

// FrameResponse carries the draw commands of one frame.
type FrameResponse struct {
	Index      int                  `json:"index"`
	SweepAngle float64              `json:"sweepAngle"`
	Commands   []engine.DrawCommand `json:"commands"`
	State      engine.State         `json:"state"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var opts CreateOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sess, err := h.service.Create(opts)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.tokens.IssueToken(sess.ID)
	if err != nil {
		slog.Error("issue token failed", "error", err, "session", sess.ID)
		h.rollback(sess.ID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{Session: sess.Info(), Token: token})
}

// rollback removes a session whose creation could not complete.
func (h *Handler) rollback(id string) {
	if err := h.service.Delete(id); err != nil {
		slog.Error("rollback session failed", "error", err, "session", id)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(mux.Vars(r)["sessionId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess.Info())
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(mux.Vars(r)["sessionId"]); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(mux.Vars(r)["sessionId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Mode == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode is required"})
		return
	}

	sess.Engine.SetMode(*req.Mode)
	writeJSON(w, http.StatusOK, sess.Engine.State())
}

func (h *Handler) SetControls(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(mux.Vars(r)["sessionId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req engine.Controls
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sess.Engine.ApplyControls(req)
	writeJSON(w, http.StatusOK, sess.Engine.State())
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]

	n := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "n must be an integer"})
			return
		}
		n = parsed
	}

	frame, err := h.service.Advance(r.Context(), id, n)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sess, err := h.service.Get(id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFrameResponse(frame, sess.Engine.State()))
}

func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(mux.Vars(r)["sessionId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newFrameResponse(sess.Engine.Render(), sess.Engine.State()))
}

func newFrameResponse(f *engine.Frame, st engine.State) FrameResponse {
	return FrameResponse{
		Index:      f.Index,
		SweepAngle: f.SweepAngle,
		Commands:   engine.CompileDrawCommands(f),
		State:      st,
	}
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
	case errors.Is(err, ErrInvalidTicks):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrLive):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrLimitReached):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "session limit reached"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
