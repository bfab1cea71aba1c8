// ABOUTME: Read-only HTTP session browser: list sessions and view one session's turn history as JSON.
// ABOUTME: Grounded on the editor package's chi.Router wiring, trimmed to GET-only routes; the caller picks the listen address.

package inspect

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/2389-research/bytecraft/store"
)

// Server is a read-only HTTP view over a session store. It never mutates
// the store: there is no create, update, or delete route. Intended to be
// bound to 127.0.0.1 only, and not started unless explicitly requested.
type Server struct {
	router chi.Router
	store  *store.Store
}

// NewServer builds a Server with its routes configured.
func NewServer(s *store.Store) *Server {
	srv := &Server{store: s}

	r := chi.NewRouter()
	r.Get("/sessions", srv.handleListSessions)
	r.Get("/sessions/{id}", srv.handleGetSession)
	srv.router = r
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe binds to addr and serves until the process exits or
// ctx-driven shutdown is handled by the caller. addr should be a
// loopback address such as "127.0.0.1:8787"; this server performs no
// authentication of its own.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListSessions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	meta, ok, err := s.store.GetSessionMeta(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	turns, err := s.store.LoadTurns(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Meta  any `json:"meta"`
		Turns any `json:"turns"`
	}{Meta: meta, Turns: turns})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	http.Error(w, err.Error(), status)
}
