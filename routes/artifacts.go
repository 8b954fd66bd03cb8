package routes

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"stillreel/artifacts"
	"stillreel/logger"
)

// ArtifactHandler serves /artifacts/<id>.mp4 while the artifact is live.
// ServeContent handles Range requests, which video elements use to seek.
func (s *Server) ArtifactHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, artifacts.URLPrefix)
	id, ok := strings.CutSuffix(name, ".mp4")
	if !ok || id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	meta, data, err := s.Artifacts.Open(id)
	if err != nil {
		if errors.Is(err, artifacts.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		logger.Errorf("Failed to open artifact %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, meta.FileName(), meta.CreatedAt, bytes.NewReader(data))
}
