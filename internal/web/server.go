// Package web provides an HTTP status server for the gas-alarm daemon.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/sweeney/gas-alarm/internal/logger"
	"github.com/sweeney/gas-alarm/internal/status"
)

// Server serves the status page over HTTP.
type Server struct {
	ctx        context.Context
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server that reads state from the given tracker.
func New(ctx context.Context, addr string, tracker *status.Tracker) *Server {
	s := &Server{
		ctx:     logger.WithName(ctx, "web"),
		tracker: tracker,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		logger.WarnKV(s.ctx, "render index", "error", err)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, _ *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(status.FormatJSON(snap)); err != nil {
		logger.Debugf(s.ctx, "write status json: %v", err)
	}
}
