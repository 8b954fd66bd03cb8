package routes

import (
	"encoding/json"
	"net/http"

	"stillreel/artifacts"
	"stillreel/credentials"
	"stillreel/history"
	"stillreel/logger"
	"stillreel/metrics"
	"stillreel/workflow"
)

// Server wires the HTTP surface to the controller and its supporting stores.
// History and Credentials may be nil; their routes then answer 503.
type Server struct {
	Controller  *workflow.Controller
	Artifacts   *artifacts.Store
	History     *history.Store
	Credentials *credentials.Store
	Metrics     *metrics.Metrics

	// JWTSecret verifies admin tokens. Empty disables admin routes.
	JWTSecret []byte
	// ServeDir receives directServe exports and is served under /exports/.
	ServeDir string
	// EngineVersion reports the encoder banner for /health.
	EngineVersion func() string
}

// Register mounts every route on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", s.IndexHandler)
	mux.HandleFunc("/selection/image", s.SelectImageHandler)
	mux.HandleFunc("/selection/audio", s.SelectAudioHandler)
	mux.HandleFunc("/create", s.CreateHandler)
	mux.HandleFunc("/state", s.StateHandler)
	mux.HandleFunc(artifacts.URLPrefix, s.ArtifactHandler)

	mux.HandleFunc("/health", s.HealthHandler)
	mux.HandleFunc("/version", VersionHandler)
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics.Handler())
	}

	mux.HandleFunc("/runs", s.RunsHandler)
	mux.HandleFunc("/credentials", s.CredentialsHandler)
	mux.HandleFunc("/export", s.ExportHandler)
	if s.ServeDir != "" {
		mux.Handle("/exports/", http.StripPrefix("/exports/", http.FileServer(http.Dir(s.ServeDir))))
	}
	logger.Debug("HTTP routes registered")
}

// writeJSON sends v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error   string   `json:"error"`
	Step    string   `json:"step,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
