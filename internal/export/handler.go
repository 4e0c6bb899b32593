package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/squine/oscillo/internal/engine"
)

// File names written by WriteFiles and served by Handler.
const (
	WaveformPNG  = "waveform.png"
	WaveformHTML = "waveform.html"
	CurvePNG     = "curve.png"
)

// EngineLookup resolves a session id to its engine.
type EngineLookup func(sessionID string) (*engine.Engine, bool)

type Handler struct {
	lookup EngineLookup
}

func NewHandler(lookup EngineLookup) *Handler {
	return &Handler{lookup: lookup}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sessions/{sessionId}/"+WaveformPNG, h.serve(renderWaveformPNG, "image/png")).Methods("GET")
	r.HandleFunc("/sessions/{sessionId}/"+WaveformHTML, h.serve(renderWaveformHTML, "text/html; charset=utf-8")).Methods("GET")
	r.HandleFunc("/sessions/{sessionId}/"+CurvePNG, h.serve(renderCurvePNG, "image/png")).Methods("GET")
}

type renderFunc func(buf *bytes.Buffer, eng *engine.Engine, label string) error

// serve renders into memory first so a failed render still gets a clean 500.
func (h *Handler) serve(render renderFunc, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["sessionId"]
		eng, ok := h.lookup(sessionID)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		var buf bytes.Buffer
		if err := render(&buf, eng, sessionID); err != nil {
			slog.Error("export failed", "error", err, "session", sessionID, "path", r.URL.Path)
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w)
	}
}

func renderWaveformPNG(buf *bytes.Buffer, eng *engine.Engine, _ string) error {
	p, err := WaveformPlot(eng.Waveform(), eng.Settings())
	if err != nil {
		return err
	}
	return WritePNG(buf, p, WaveformWidth, WaveformHeight)
}

func renderWaveformHTML(buf *bytes.Buffer, eng *engine.Engine, label string) error {
	st := eng.State()
	subtitle := fmt.Sprintf("%s mode=%s frame=%d", label, st.Mode, st.Frame)
	if err := WaveformChart(eng.Waveform(), eng.Settings(), subtitle).Render(buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func renderCurvePNG(buf *bytes.Buffer, eng *engine.Engine, _ string) error {
	p, err := CurvePlot(eng.ActiveCurve(), eng.Region())
	if err != nil {
		return err
	}
	return WritePNG(buf, p, CurveSize, CurveSize)
}

// WriteFiles writes all three exports of eng into dir and returns their paths.
func WriteFiles(dir string, eng *engine.Engine, label string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	outputs := []struct {
		name   string
		render renderFunc
	}{
		{WaveformPNG, renderWaveformPNG},
		{WaveformHTML, renderWaveformHTML},
		{CurvePNG, renderCurvePNG},
	}

	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		var buf bytes.Buffer
		if err := o.render(&buf, eng, label); err != nil {
			return paths, fmt.Errorf("%s: %w", o.name, err)
		}
		path := filepath.Join(dir, o.name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", o.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
