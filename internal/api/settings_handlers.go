package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/chatforge/chatforge/internal/analytics"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.app.Settings())
}

// handleUpdateSettings merges a partial profile. Unknown keys are ignored and
// invalid values fall back per field, so the update never fails outright.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.writeJSON(w, s.app.UpdateSettings(patch))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	agg := s.app.Store.Analytics()

	window := analytics.DefaultTrendWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			window = n
		}
	}

	payload := map[string]any{
		"state": agg.Snapshot(),
		"trend": agg.SentimentTrend(window),
	}
	if avg, ok := agg.AverageLatency(); ok {
		payload["average_latency_ms"] = avg.Milliseconds()
	}

	s.writeJSON(w, payload)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"insights": s.app.Store.Analytics().Insights(),
	})
}

func (s *Server) handleResetAnalytics(w http.ResponseWriter, r *http.Request) {
	s.app.Store.ResetAnalytics()
	w.WriteHeader(http.StatusNoContent)
}
