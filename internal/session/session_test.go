package session

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squine/oscillo/internal/auth"
	"github.com/squine/oscillo/internal/engine"
	"github.com/squine/oscillo/internal/typeid"
)

func TestServiceLifecycle(t *testing.T) {
	svc := NewService(engine.DefaultSettings(), 2)

	var deleted []string
	svc.OnDelete(func(id string) { deleted = append(deleted, id) })

	mode := engine.ModePolygon
	sides := 8
	a, err := svc.Create(CreateOptions{Mode: &mode, Sides: &sides})
	require.NoError(t, err)
	assert.Equal(t, engine.ModePolygon, a.Engine.State().Mode)
	assert.Equal(t, 8, a.Engine.State().CurveSegments)

	b, err := svc.Create(CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, engine.ModeCircle, b.Engine.State().Mode)

	_, err = svc.Create(CreateOptions{})
	assert.ErrorIs(t, err, ErrLimitReached)

	infos := svc.List()
	require.Len(t, infos, 2)
	assert.Equal(t, a.ID, infos[0].ID)

	eng, ok := svc.Engine(a.ID)
	assert.True(t, ok)
	assert.Same(t, a.Engine, eng)

	require.NoError(t, svc.Delete(a.ID))
	assert.Equal(t, []string{a.ID}, deleted)
	_, err = svc.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(a.ID), ErrNotFound)

	_, err = svc.Create(CreateOptions{})
	assert.NoError(t, err, "deleting frees a slot")
}

func TestServiceGetValidatesID(t *testing.T) {
	svc := NewService(engine.DefaultSettings(), 0)

	_, err := svc.Get("proj_123")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = svc.Get(typeid.NewSessionID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok := svc.Engine("nope")
	assert.False(t, ok)
}

func TestServiceAdvance(t *testing.T) {
	svc := NewService(engine.DefaultSettings(), 0)
	sess, err := svc.Create(CreateOptions{})
	require.NoError(t, err)

	frame, err := svc.Advance(context.Background(), sess.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, frame.Index)
	assert.Equal(t, 25, sess.Engine.State().TraceSamples)

	for _, n := range []int{0, -1, MaxTicks + 1} {
		_, err = svc.Advance(context.Background(), sess.ID, n)
		assert.ErrorIs(t, err, ErrInvalidTicks, "n=%d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Advance(ctx, sess.ID, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServiceAdvanceRefusesLiveSession(t *testing.T) {
	svc := NewService(engine.DefaultSettings(), 0)
	live, err := svc.Create(CreateOptions{})
	require.NoError(t, err)
	idle, err := svc.Create(CreateOptions{})
	require.NoError(t, err)

	svc.SetLiveCheck(func(id string) bool { return id == live.ID })

	_, err = svc.Advance(context.Background(), live.ID, 5)
	assert.ErrorIs(t, err, ErrLive)
	assert.Zero(t, live.Engine.State().Frame)

	frame, err := svc.Advance(context.Background(), idle.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, frame.Index)
}

type testAPI struct {
	t      *testing.T
	router *mux.Router
	svc    *Service
}

func newTestAPI(t *testing.T, maxSessions int) *testAPI {
	t.Helper()
	svc := NewService(engine.DefaultSettings(), maxSessions)
	tokens := auth.NewService("test-secret", time.Hour)

	r := mux.NewRouter()
	NewHandler(svc, tokens).RegisterRoutes(r.PathPrefix("/api").Subrouter())
	return &testAPI{t: t, router: r, svc: svc}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) create(body any) createResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/sessions", "", body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp createResponse
	require.NoError(a.t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHandlerCreateAndGet(t *testing.T) {
	api := newTestAPI(t, 0)

	created := api.create(map[string]any{"mode": "square"})
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, engine.ModeSquare, created.Session.State.Mode)

	// Empty body is allowed.
	plain := api.do(http.MethodPost, "/api/sessions", "", nil)
	assert.Equal(t, http.StatusCreated, plain.Code)

	rec := api.do(http.MethodGet, "/api/sessions/"+created.Session.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[Info](t, rec)
	assert.Equal(t, created.Session.ID, info.ID)
	assert.Equal(t, 4, info.State.CurveSegments)

	rec = api.do(http.MethodGet, "/api/sessions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]Info](t, rec), 2)

	rec = api.do(http.MethodGet, "/api/sessions/"+typeid.NewSessionID(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(http.MethodGet, "/api/sessions/garbage", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/sessions", "", map[string]any{"mode": "hexagon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerLimit(t *testing.T) {
	api := newTestAPI(t, 1)
	api.create(nil)
	rec := api.do(http.MethodPost, "/api/sessions", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerControlRoutes(t *testing.T) {
	api := newTestAPI(t, 0)
	created := api.create(nil)
	other := api.create(nil)
	id, token := created.Session.ID, created.Token

	rec := api.do(http.MethodPut, "/api/sessions/"+id+"/mode", "", map[string]any{"mode": "triangle"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = api.do(http.MethodPut, "/api/sessions/"+id+"/mode", other.Token, map[string]any{"mode": "triangle"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPut, "/api/sessions/"+id+"/mode", token, map[string]any{"mode": "triangle"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, engine.ModeTriangle, decode[engine.State](t, rec).Mode)

	rec = api.do(http.MethodPut, "/api/sessions/"+id+"/mode", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, "/api/sessions/"+id+"/controls", token, map[string]any{
		"rotation":  0.25,
		"frequency": 9,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[engine.State](t, rec)
	assert.Equal(t, 0.25, st.Rotation)
	assert.Equal(t, float64(engine.MaxFrequency), st.Frequency)

	rec = api.do(http.MethodPost, "/api/sessions/"+id+"/ticks?n=30", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	frame := decode[FrameResponse](t, rec)
	assert.Equal(t, 30, frame.Index)
	assert.Equal(t, 30, frame.State.TraceSamples)
	require.NotEmpty(t, frame.Commands)
	assert.Equal(t, engine.LayerCurve, frame.Commands[0].Layer)

	rec = api.do(http.MethodPost, "/api/sessions/"+id+"/ticks?n=601", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(http.MethodPost, "/api/sessions/"+id+"/ticks?n=x", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/sessions/"+id+"/frame", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, decode[FrameResponse](t, rec).Index, "frame does not advance")

	rec = api.do(http.MethodDelete, "/api/sessions/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodGet, "/api/sessions/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerAdvanceLiveConflict(t *testing.T) {
	api := newTestAPI(t, 0)
	created := api.create(nil)
	api.svc.SetLiveCheck(func(string) bool { return true })

	rec := api.do(http.MethodPost, "/api/sessions/"+created.Session.ID+"/ticks?n=3", created.Token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrLive.Error())
}

func TestHandlerRollbackLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	svc := NewService(engine.DefaultSettings(), 0)
	h := NewHandler(svc, auth.NewService("test-secret", time.Hour))

	sess, err := svc.Create(CreateOptions{})
	require.NoError(t, err)
	h.rollback(sess.ID)
	_, err = svc.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotContains(t, buf.String(), "rollback session failed")

	// Already gone: the delete error is logged, not dropped.
	h.rollback(sess.ID)
	assert.Contains(t, buf.String(), "rollback session failed")
	assert.Contains(t, buf.String(), sess.ID)
}
