package routes

import (
	"context"
	"errors"
	"net/http"

	"stillreel/logger"
	"stillreel/models"
	"stillreel/workflow"
)

type createResponse struct {
	Artifact models.Artifact `json:"artifact"`
}

// CreateHandler runs one conversion. The run is detached from the request so
// a client that goes away does not abort the engine half way.
func (s *Server) CreateHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Create request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	artifact, err := s.Controller.CreateVideo(context.WithoutCancel(r.Context()))
	if err != nil {
		status, body := createErrorResponse(err)
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, createResponse{Artifact: artifact})
}

func createErrorResponse(err error) (int, errorResponse) {
	body := errorResponse{Error: workflow.UserMessage(err)}

	var missing *workflow.MissingInputError
	var conv *workflow.ConversionError
	switch {
	case errors.As(err, &missing):
		body.Missing = missing.Missing
		return http.StatusBadRequest, body
	case errors.Is(err, workflow.ErrBusy):
		return http.StatusConflict, body
	case errors.Is(err, workflow.ErrClosed):
		return http.StatusServiceUnavailable, body
	case errors.As(err, &conv):
		body.Step = string(conv.Step)
		return http.StatusInternalServerError, body
	default:
		return http.StatusInternalServerError, body
	}
}
