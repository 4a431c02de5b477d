package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chatforge/chatforge/internal/session"
)

// SubmitRequest is the body for POST /messages.
type SubmitRequest struct {
	Message string `json:"message"`
}

// SubmitResponse acknowledges a submission. The bot reply follows
// asynchronously after the profile's response delay.
type SubmitResponse struct {
	HandleID  string `json:"handle_id"`
	SessionID string `json:"session_id"`
	DelayMs   int64  `json:"delay_ms"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.app.Store.CreateSession()
	w.WriteHeader(http.StatusCreated)
	s.writeJSON(w, map[string]string{"id": id})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.app.Store.ListSessions()
	s.writeJSON(w, map[string]any{
		"sessions": sessions,
		"total":    len(sessions),
		"active":   s.app.Store.ActiveID(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.Store.Snapshot(mux.Vars(r)["id"])
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, snap)
}

func (s *Server) handleSwitchActive(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Store.SwitchActive(mux.Vars(r)["id"]); err != nil {
		s.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	handle, err := s.app.Submit(req.Message)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	s.writeJSON(w, SubmitResponse{
		HandleID:  handle.ID,
		SessionID: handle.SessionID,
		DelayMs:   handle.Delay.Milliseconds(),
	})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Store.ClearSession(mux.Vars(r)["id"]); err != nil {
		s.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	id := s.app.Store.ClearAll()
	s.writeJSON(w, map[string]string{"id": id})
}

func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.app.Store.ExportSession(mux.Vars(r)["id"])
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, bundle)
}

func (s *Server) handleImportSession(w http.ResponseWriter, r *http.Request) {
	var bundle session.ExportBundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		s.writeError(w, "invalid export bundle", http.StatusBadRequest)
		return
	}

	id := s.app.Store.ImportSession(bundle)
	w.WriteHeader(http.StatusCreated)
	s.writeJSON(w, map[string]string{"id": id})
}

// handleVoice reports that voice capture is not available in this build.
// The notice is non-fatal; the core continues unaffected.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	s.writeFailure(w, session.ErrUnsupportedCapability)
}
