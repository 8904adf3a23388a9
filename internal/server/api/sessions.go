package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/nayana/internal/stats"
	"github.com/ayusman/nayana/internal/store"
)

// SessionStore is the read side of the session history.
type SessionStore interface {
	Get(id string) (*store.Session, error)
	List(limit int) ([]*store.Session, error)
	Stats(id string) ([]stats.KindStats, error)
	Delete(id string) error
}

// SessionHandler serves the persisted session history.
type SessionHandler struct {
	store SessionStore
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s SessionStore) *SessionHandler {
	return &SessionHandler{store: s}
}

// Routes returns the handler's routes, to be mounted at /api/sessions.
func (h *SessionHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	return r
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
	Count    int              `json:"count"`
}

type sessionResponse struct {
	*store.Session
	Running bool                `json:"running"`
	Stats   []kindStatsResponse `json:"stats"`
}

// list handles GET /api/sessions?limit=N, newest first.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}

	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions, Count: len(sessions)})
}

// get handles GET /api/sessions/{id} with the last stats checkpoint.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := h.store.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	snapshot, err := h.store.Stats(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session stats")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Session: sess,
		Running: sess.Running(),
		Stats:   toKindStats(snapshot),
	})
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Delete(chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
