package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/models"
)

// SettingsHandler serves the singleton site settings record. The first
// public read creates it with model defaults.
type SettingsHandler struct{ DB *gorm.DB }

func NewSettingsHandler(db *gorm.DB) *SettingsHandler { return &SettingsHandler{DB: db} }

func (h *SettingsHandler) load() (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := h.DB.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.SiteSettings{}
		if err := h.DB.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Get: GET /api/site-settings (public)
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.load()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_settings", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

// Update: PUT /api/site-settings (admin only). Full replace of the singleton.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_settings", nil)
		return
	}
	var in models.SiteSettings
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = existing.ID
	if err := h.DB.Save(&in).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_settings", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, in)
}
