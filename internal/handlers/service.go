package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/models"
	"github.com/deployprime/agency-backend/validation"
)

// ServiceHandler: site "services offered" content.
type ServiceHandler struct{ DB *gorm.DB }

func NewServiceHandler(db *gorm.DB) *ServiceHandler { return &ServiceHandler{DB: db} }

// PublicList: GET /api/services — published only, display order.
func (h *ServiceHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	var services []models.Service
	if err := h.DB.Where("published = ?", true).Order("display_order asc").Find(&services).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_services", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, services)
}

// PublicGet: GET /api/services/{slug}
func (h *ServiceHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	var service models.Service
	if err := h.DB.Where("slug = ? AND published = ?", r.PathValue("slug"), true).First(&service).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "service_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, service)
}

// AdminList: GET /api/services/admin — drafts included.
func (h *ServiceHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	var services []models.Service
	if err := h.DB.Order("display_order asc").Find(&services).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_services", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, services)
}

// Create: POST /api/services
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Published unless the payload says otherwise.
	service := models.Service{Published: true}
	if !decodeJSON(w, r, &service) {
		return
	}
	service.ID = 0
	v := validation.Violations{}
	validation.Required("title", service.Title, v)
	validation.Required("slug", service.Slug, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Create(&service).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "slug_already_exists", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, service)
}

// Update: PUT /api/services/{id}
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "service_not_found", nil)
		return
	}
	var existing models.Service
	if err := h.DB.First(&existing, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "service_not_found", nil)
		return
	}
	var in models.Service
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = existing.ID
	in.CreatedAt = existing.CreatedAt
	if err := h.DB.Save(&in).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_service", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, in)
}

// Delete: DELETE /api/services/{id} (admin only)
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "service_not_found", nil)
		return
	}
	res := h.DB.Delete(&models.Service{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_service", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "service_not_found", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "service_deleted")
}
