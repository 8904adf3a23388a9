package api

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/nayana/internal/stats"
)

// LiveSession is the running session as seen by the API.
type LiveSession interface {
	ID() string
	Recorder() *stats.Recorder
	Enabled() bool
	SetEnabled(enabled bool)
}

// LiveHandler serves the statistics and pause state of the running session.
type LiveHandler struct {
	session LiveSession
}

// NewLiveHandler creates a new LiveHandler for the running session.
func NewLiveHandler(s LiveSession) *LiveHandler {
	return &LiveHandler{session: s}
}

// Register adds the live routes to r.
func (h *LiveHandler) Register(r chi.Router) {
	r.Get("/api/stats", h.stats)
	r.Get("/api/control", h.control)
	r.Post("/api/control/pause", h.setEnabled(false))
	r.Post("/api/control/resume", h.setEnabled(true))
}

type kindStatsResponse struct {
	Kind          stats.Kind `json:"kind"`
	Attempts      int        `json:"attempts"`
	Successes     int        `json:"successes"`
	AccuracyPct   float64    `json:"accuracy_pct"`
	AvgResponseMs float64    `json:"avg_response_ms"`
}

type liveStatsResponse struct {
	SessionID string              `json:"session_id"`
	Enabled   bool                `json:"enabled"`
	Stats     []kindStatsResponse `json:"stats"`
	Report    string              `json:"report"`
}

type controlResponse struct {
	SessionID string `json:"session_id"`
	Enabled   bool   `json:"enabled"`
}

func toKindStats(snapshot []stats.KindStats) []kindStatsResponse {
	out := make([]kindStatsResponse, 0, len(snapshot))
	for _, ks := range snapshot {
		out = append(out, kindStatsResponse{
			Kind:          ks.Kind,
			Attempts:      ks.Attempts,
			Successes:     ks.Successes,
			AccuracyPct:   ks.Accuracy(),
			AvgResponseMs: ks.AvgResponseMs(),
		})
	}
	return out
}

// stats handles GET /api/stats. It reads a snapshot and never resets counters.
func (h *LiveHandler) stats(w http.ResponseWriter, r *http.Request) {
	snapshot := h.session.Recorder().Snapshot()

	var report bytes.Buffer
	stats.WriteReport(&report, "", snapshot)

	writeJSON(w, http.StatusOK, liveStatsResponse{
		SessionID: h.session.ID(),
		Enabled:   h.session.Enabled(),
		Stats:     toKindStats(snapshot),
		Report:    report.String(),
	})
}

// control handles GET /api/control.
func (h *LiveHandler) control(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, controlResponse{SessionID: h.session.ID(), Enabled: h.session.Enabled()})
}

func (h *LiveHandler) setEnabled(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.session.SetEnabled(enabled)
		h.control(w, r)
	}
}
