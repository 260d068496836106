package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/services"
)

// UsersHandler is the admin-only user management surface.
type UsersHandler struct {
	users *services.UserService
	log   *logrus.Entry
}

func NewUsersHandler(users *services.UserService, log *logrus.Entry) *UsersHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &UsersHandler{users: users, log: log}
}

// List pages through users with ?search= and ?role= filters and returns the
// aggregate cards alongside.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 10)
	if limit > 100 {
		limit = 100
	}

	result, err := h.users.GetUsers(r.Context(), page, limit,
		r.URL.Query().Get("search"), models.Role(r.URL.Query().Get("role")))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	created, err := h.users.CreateUser(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input services.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	updated, err := h.users.UpdateUser(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
