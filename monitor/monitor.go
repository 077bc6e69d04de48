// Package monitor exposes simulation statistics over HTTP while a run is in
// progress or after it finishes.
package monitor

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// StatsProvider supplies the snapshot served at /stats.
type StatsProvider interface {
	StatsSnapshot() any
}

// Server serves statistics for one simulation.
type Server struct {
	addr     string
	provider StatsProvider
	router   *mux.Router
}

// NewServer creates a monitor bound to addr, e.g. ":8080".
func NewServer(addr string, provider StatsProvider) *Server {
	s := &Server{
		addr:     addr,
		provider: provider,
		router:   mux.NewRouter(),
	}
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	return s
}

// ListenAndServe blocks serving requests; run it in its own goroutine.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "o3sim monitor")
	fmt.Fprintln(w, "GET /stats for statistics")
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.provider.StatsSnapshot()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
