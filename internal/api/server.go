// Package api exposes the command surface collaborators call into: HTTP
// endpoints mirroring the session store's operations and a websocket relay
// for duplex messaging. The view layer is solely responsible for turning the
// named failures returned here into user feedback.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/chatforge/chatforge/internal/app"
	"github.com/chatforge/chatforge/internal/session"
)

// Server hosts the HTTP command surface for one App.
type Server struct {
	app        *app.App
	logger     *log.Logger
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// NewServer creates a server around an assembled App.
func NewServer(a *app.App, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		app:    a,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Single-user local tool; the relay accepts any origin.
				return true
			},
		},
	}
}

// Handler returns the configured router. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Start runs the server until Stop or a listener error.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("starting api server", "addr", addr)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.setupRoutes(),
	}
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Sessions
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions", s.handleClearAll).Methods("DELETE")
	api.HandleFunc("/sessions/import", s.handleImportSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}/activate", s.handleSwitchActive).Methods("POST")
	api.HandleFunc("/sessions/{id}/messages", s.handleClearSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/export", s.handleExportSession).Methods("GET")

	// Messages go to the active session; the reply arrives asynchronously
	// through the relay or the event stream.
	api.HandleFunc("/messages", s.handleSubmitMessage).Methods("POST")

	// Settings
	api.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	api.HandleFunc("/settings", s.handleUpdateSettings).Methods("PUT")

	// Analytics
	api.HandleFunc("/analytics", s.handleAnalytics).Methods("GET")
	api.HandleFunc("/analytics/insights", s.handleInsights).Methods("GET")
	api.HandleFunc("/analytics/reset", s.handleResetAnalytics).Methods("POST")

	// Optional platform features
	api.HandleFunc("/voice", s.handleVoice).Methods("GET")

	// Realtime surfaces
	api.HandleFunc("/chat/ws", s.handleRelay)
	api.HandleFunc("/events/stream", s.handleEventStream).Methods("GET")
	api.HandleFunc("/events/history", s.handleEventHistory).Methods("GET")

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().Unix(),
		"subscribers": s.app.Broker.SubscriberCount(),
	})
}

// writeJSON encodes a success payload.
func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeError sends a plain error payload with the given status.
func (s *Server) writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeFailure maps the store's sentinel errors to status codes. Anything
// unrecognized is a 500, though the store never terminates on any input.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		s.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrEmptyInput):
		s.writeError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, session.ErrUnsupportedCapability):
		s.writeError(w, err.Error(), http.StatusNotImplemented)
	default:
		s.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}
