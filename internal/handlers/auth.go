package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/auth"
	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/models"
)

// AuthHandler owns the admin session endpoints. Admins sign in with
// email/password and carry a signed session cookie afterwards.
type AuthHandler struct {
	DB *gorm.DB
	// RoleChanged is called after a role update so the permission
	// cache stops serving the old profile.
	RoleChanged func(userID uint)
}

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

// Login: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "email_and_password_required", nil)
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

// Me: GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		auth.ClearSession(w)
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Logout: POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.Message(w, http.StatusOK, "logged_out")
}

// ListUsers: GET /api/auth/users (admin only)
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.DB.Order("created_at asc").Find(&users).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_users", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

// UpdateRole: PATCH /api/auth/users/{id}/role (admin only). Admins
// cannot demote themselves, so the instance always keeps one admin.
func (h *AuthHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleEditor {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed",
			map[string]string{"role": "invalid_role"})
		return
	}
	if id == uid && req.Role != models.RoleAdmin {
		httpx.JSONError(w, http.StatusBadRequest, "cannot_demote_self", nil)
		return
	}
	res := h.DB.Model(&models.User{}).Where("id = ?", id).Update("role", req.Role)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_role", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	if h.RoleChanged != nil {
		h.RoleChanged(id)
	}
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
