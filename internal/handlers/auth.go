package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/vjbravo123/portfolio-cms/internal/services"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// AuthHandler issues JWTs for dashboard sessions.
type AuthHandler struct {
	users  *services.UserService
	secret string
	log    *logrus.Entry
}

func NewAuthHandler(users *services.UserService, secret string, log *logrus.Entry) *AuthHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &AuthHandler{users: users, secret: secret, log: log}
}

// Login verifies the credentials and returns a 24h HS256 token carrying the
// user id, email and role.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		respondError(w, http.StatusInternalServerError, "JWT secret not set")
		return
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(h.secret))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "token error")
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{Token: tokenString, User: user})
}
