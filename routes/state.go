package routes

import (
	"net/http"

	"stillreel/logger"
)

// StateHandler reports the busy flag, the selection and the current artifact.
func (s *Server) StateHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("State request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.Controller.State())
}
