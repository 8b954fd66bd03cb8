package routes

import (
	"encoding/json"
	"net/http"

	"stillreel/logger"
)

// CredentialsHandler stores export credentials and returns the key to pass to /export.
func (s *Server) CredentialsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorize(w, r, "credentials") {
		return
	}
	if s.Credentials == nil {
		writeError(w, http.StatusServiceUnavailable, "credential storage is not enabled")
		return
	}

	credsBody := make(map[string]string)
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&credsBody); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(credsBody) == 0 {
		writeError(w, http.StatusBadRequest, "no credentials given")
		return
	}

	key, err := s.Credentials.Store(credsBody)
	if err != nil {
		logger.Errorf("Failed to store credentials: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_key": key})
}
