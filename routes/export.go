package routes

import (
	"bytes"
	"errors"
	"net/http"
	"slices"
	"strings"

	"stillreel/artifacts"
	"stillreel/logger"
	writerbackends "stillreel/writerBackends"

	"github.com/cockroachdb/pebble"
)

type exportResponse struct {
	Backend  string `json:"backend"`
	Filename string `json:"filename"`
	Folder   string `json:"folder,omitempty"`
	URL      string `json:"url,omitempty"`
}

// ExportHandler copies the current artifact to a storage backend. Stored
// credentials are looked up by ?key=; directServe needs none.
func (s *Server) ExportHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Export request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorize(w, r, "export") {
		return
	}

	query := r.URL.Query()
	backend := query.Get("backend")
	if !slices.Contains(writerbackends.Backends, backend) {
		writeError(w, http.StatusBadRequest, "unknown backend")
		return
	}

	current, ok := s.Controller.Artifact()
	if !ok {
		writeError(w, http.StatusConflict, "no video to export")
		return
	}
	meta, data, err := s.Artifacts.Open(current.ID)
	if err != nil {
		if errors.Is(err, artifacts.ErrNotFound) {
			writeError(w, http.StatusConflict, "no video to export")
			return
		}
		logger.Errorf("Failed to open artifact %s: %v", current.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to read video")
		return
	}

	accessInfo := make(map[string]string)
	if key := query.Get("key"); key != "" {
		if s.Credentials == nil {
			writeError(w, http.StatusServiceUnavailable, "credential storage is not enabled")
			return
		}
		creds, err := s.Credentials.Get(key)
		if err != nil {
			if errors.Is(err, pebble.ErrNotFound) {
				writeError(w, http.StatusNotFound, "unknown credentials key")
				return
			}
			logger.Errorf("Failed to load credentials: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to load credentials")
			return
		}
		for k, v := range creds {
			accessInfo[k] = v
		}
	} else if backend != writerbackends.DirectServe {
		writeError(w, http.StatusBadRequest, "backend requires a credentials key")
		return
	}

	folder := strings.Trim(query.Get("folder"), "/")
	if strings.Contains(folder, "..") {
		writeError(w, http.StatusBadRequest, "invalid folder")
		return
	}
	accessInfo["filename"] = meta.FileName()
	accessInfo["folder"] = folder
	accessInfo["contentType"] = meta.ContentType
	if backend == writerbackends.DirectServe {
		if s.ServeDir == "" {
			writeError(w, http.StatusServiceUnavailable, "direct serving is not enabled")
			return
		}
		accessInfo["baseDir"] = s.ServeDir
	}

	if err := writerbackends.Write(r.Context(), backend, accessInfo, bytes.NewReader(data)); err != nil {
		logger.Errorf("Export of %s to %s failed: %v", meta.ID, backend, err)
		writeError(w, http.StatusBadGateway, "export failed")
		return
	}

	resp := exportResponse{Backend: backend, Filename: meta.FileName(), Folder: folder}
	if backend == writerbackends.DirectServe {
		resp.URL = "/exports/" + meta.FileName()
		if folder != "" {
			resp.URL = "/exports/" + folder + "/" + meta.FileName()
		}
	}
	logger.Infof("Exported %s to %s", meta.FileName(), backend)
	writeJSON(w, http.StatusOK, resp)
}
