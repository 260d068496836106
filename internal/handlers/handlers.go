// Package handlers is the HTTP surface over the services, in two tiers: a
// public read API and a JWT-protected admin API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/services"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
)

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy to HTTP statuses:
// validation 400, missing documents 404, uniqueness conflicts 409, bad
// credentials 401, everything else 500 with the detail kept in the log.
func respondServiceError(w http.ResponseWriter, log *logrus.Entry, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrDuplicateSlug):
		respondError(w, http.StatusConflict, "slug already exists")
	case errors.Is(err, storage.ErrDuplicateEmail):
		respondError(w, http.StatusConflict, "email already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid email or password")
	default:
		log.WithError(err).Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
