package handlers

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/auth"
	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/models"
	"github.com/deployprime/agency-backend/validation"
)

// ClientAuthHandler covers the client portal: self-registration with
// admin approval, bearer-token login and the password-history based
// reset flow.
type ClientAuthHandler struct{ DB *gorm.DB }

func NewClientAuthHandler(db *gorm.DB) *ClientAuthHandler { return &ClientAuthHandler{DB: db} }

// passwordHistoryDepth is how many previous hashes the reset flow keeps
// and checks.
const passwordHistoryDepth = 3

type clientIdentity struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (c *clientIdentity) normalize() {
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
}

// findByIdentity matches on email or phone, whichever is given.
func (h *ClientAuthHandler) findByIdentity(id clientIdentity) (*models.ClientUser, error) {
	q := h.DB
	switch {
	case id.Email != "" && id.Phone != "":
		q = q.Where("email = ? OR phone = ?", id.Email, id.Phone)
	case id.Email != "":
		q = q.Where("email = ?", id.Email)
	default:
		q = q.Where("phone = ?", id.Phone)
	}
	var user models.ClientUser
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Register: POST /api/client-auth/register. New accounts start unapproved.
func (h *ClientAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
		clientIdentity
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.normalize()
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.MinLen("password", req.Password, 6, v)
	if req.Email == "" && req.Phone == "" {
		v["identity"] = "email_or_phone_required"
	} else if req.Email != "" {
		validation.Email("email", req.Email, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	if _, err := h.findByIdentity(req.clientIdentity); err == nil {
		httpx.JSONError(w, http.StatusBadRequest, "user_already_exists", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	user := models.ClientUser{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hash),
		PasswordHistory: []models.ClientPasswordHistory{
			{Hash: string(hash)},
		},
	}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_register", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "registration_pending_approval",
		"user":    user,
	})
}

// Login: POST /api/client-auth/login. Issues a 30-day bearer token.
func (h *ClientAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
		clientIdentity
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.normalize()
	if req.Password == "" || (req.Email == "" && req.Phone == "") {
		httpx.JSONError(w, http.StatusBadRequest, "credentials_required", nil)
		return
	}
	user, err := h.findByIdentity(req.clientIdentity)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	token, expiresAt, err := auth.MintClientToken(user.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      user,
	})
}

// Me: GET /api/client-auth/me (client token)
func (h *ClientAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cid, ok := auth.ClientIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var user models.ClientUser
	if err := h.DB.First(&user, cid).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// ForgotPassword: POST /api/client-auth/forgot-password. The caller proves
// ownership with any of the last few passwords, then sets a new one.
func (h *ClientAuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
		clientIdentity
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.normalize()
	v := validation.Violations{}
	validation.Required("oldPassword", req.OldPassword, v)
	validation.MinLen("newPassword", req.NewPassword, 6, v)
	if req.Email == "" && req.Phone == "" {
		v["identity"] = "email_or_phone_required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	user, err := h.findByIdentity(req.clientIdentity)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	var history []models.ClientPasswordHistory
	if err := h.DB.Where("client_user_id = ?", user.ID).Order("created_at desc").Limit(passwordHistoryDepth).Find(&history).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	matched := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) == nil
	for _, entry := range history {
		if matched {
			break
		}
		matched = bcrypt.CompareHashAndPassword([]byte(entry.Hash), []byte(req.OldPassword)) == nil
	}
	if !matched {
		httpx.JSONError(w, http.StatusUnauthorized, "old_password_mismatch", nil)
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ClientUser{}).Where("id = ?", user.ID).Update("password", string(newHash)).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.ClientPasswordHistory{ClientUserID: user.ID, Hash: string(newHash)}).Error; err != nil {
			return err
		}
		// Keep only the most recent entries.
		var stale []models.ClientPasswordHistory
		if err := tx.Where("client_user_id = ?", user.ID).Order("created_at desc").Offset(passwordHistoryDepth).Find(&stale).Error; err != nil {
			return err
		}
		if len(stale) > 0 {
			ids := make([]uint, 0, len(stale))
			for _, s := range stale {
				ids = append(ids, s.ID)
			}
			if err := tx.Delete(&models.ClientPasswordHistory{}, ids).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_reset_password", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "password_reset")
}

// AdminList: GET /api/client-auth/admin/users?status=pending|approved
func (h *ClientAuthHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Preload("ApprovedBy").Order("created_at desc")
	switch r.URL.Query().Get("status") {
	case "pending":
		q = q.Where("is_approved = ?", false)
	case "approved":
		q = q.Where("is_approved = ?", true)
	}
	var users []models.ClientUser
	if err := q.Find(&users).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_users", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

// AdminApprove: PATCH /api/client-auth/admin/users/{id}/approve
func (h *ClientAuthHandler) AdminApprove(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	now := time.Now()
	res := h.DB.Model(&models.ClientUser{}).Where("id = ?", id).Updates(map[string]any{
		"is_approved":    true,
		"approved_by_id": uid,
		"approved_at":    now,
	})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_approve_user", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	var user models.ClientUser
	if err := h.DB.Preload("ApprovedBy").First(&user, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// AdminDelete: DELETE /api/client-auth/admin/users/{id} (admin only)
func (h *ClientAuthHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	res := h.DB.Select("PasswordHistory").Delete(&models.ClientUser{ID: id})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_user", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "user_deleted")
}
