package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"stillreel/logger"
	"stillreel/models"
)

// maxUploadBytes bounds one selected file.
const maxUploadBytes = 64 << 20

func (s *Server) SelectImageHandler(w http.ResponseWriter, r *http.Request) {
	s.handleSelection(w, r, "image", s.Controller.SelectImage)
}

func (s *Server) SelectAudioHandler(w http.ResponseWriter, r *http.Request) {
	s.handleSelection(w, r, "audio", s.Controller.SelectAudio)
}

// handleSelection reads the multipart "file" field fully and hands it to set.
// A request without a file leaves the slot untouched.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request, slot string, set func(models.Blob)) {
	logger.Debugf("Select %s request: method=%s, remoteAddr=%s", slot, r.Method, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("%s file is too large", slot))
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("no %s file selected", slot))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Errorf("Failed to read %s upload: %v", slot, err)
		writeError(w, http.StatusInternalServerError, "Failed to read file data")
		return
	}

	blob := models.Blob{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	set(blob)

	writeJSON(w, http.StatusOK, models.Present(blob).Info())
}
