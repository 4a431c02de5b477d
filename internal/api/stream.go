package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleEventHistory returns recently published events, optionally filtered
// by session. Lets a reconnecting collaborator catch up before resubscribing.
func (s *Server) handleEventHistory(w http.ResponseWriter, r *http.Request) {
	history := s.app.Broker.History(r.URL.Query().Get("session_id"))
	s.writeJSON(w, map[string]any{
		"events": history,
		"total":  len(history),
	})
}

// handleEventStream streams broker events to the client as server-sent
// events. The subscription ends when the client disconnects.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	sub := s.app.Broker.Subscribe(r.Context())
	for e := range sub {
		data, err := json.Marshal(e)
		if err != nil {
			s.logger.Warn("event stream marshal failed", "type", e.Type, "err", err)
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
		flusher.Flush()
	}
}
