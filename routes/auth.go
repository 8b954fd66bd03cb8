package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stillreel/logger"
	"stillreel/models"
	"stillreel/utils"
)

var errAdminDisabled = errors.New("admin routes are disabled")

// verifyJWT checks the bearer token on an admin request.
func (s *Server) verifyJWT(r *http.Request) (*models.AdminJWT, error) {
	if len(s.JWTSecret) == 0 {
		return nil, errAdminDisabled
	}
	if err := utils.CheckSecret(s.JWTSecret); err != nil {
		return nil, err
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	return utils.VerifyAdminJWT(token, utils.VerifyConfig{
		SecretKey: s.JWTSecret,
		ClockSkew: 30 * time.Second,
	})
}

// authorize writes the error response and returns false unless the request
// carries a valid token granting scope.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, scope string) bool {
	claims, err := s.verifyJWT(r)
	if err != nil {
		if errors.Is(err, errAdminDisabled) {
			http.NotFound(w, r)
			return false
		}
		if errors.Is(err, utils.ErrSecretTooShort) {
			logger.Errorf("Admin route %s unavailable: %v", r.URL.Path, err)
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return false
		}
		logger.Warnf("Rejected admin request to %s from %s: %v", r.URL.Path, r.RemoteAddr, err)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	if !claims.HasScope(scope) {
		logger.Warnf("Token for %q lacks scope %q", claims.Subject, scope)
		writeError(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}
