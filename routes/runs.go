package routes

import (
	"net/http"

	"stillreel/logger"
)

// RunsHandler lists run history, or returns a single run with ?id=.
func (s *Server) RunsHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Runs request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorize(w, r, "runs") {
		return
	}
	if s.History == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is not enabled")
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		rec, err := s.History.Get(id)
		if err != nil {
			logger.Errorf("Failed to load run %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Failed to load run")
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}

	runs, err := s.History.List()
	if err != nil {
		logger.Errorf("Failed to list runs: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
