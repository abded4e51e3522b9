package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/models"
	"github.com/deployprime/agency-backend/validation"
)

// ProjectHandler: portfolio projects.
type ProjectHandler struct{ DB *gorm.DB }

func NewProjectHandler(db *gorm.DB) *ProjectHandler { return &ProjectHandler{DB: db} }

// PublicList: GET /api/projects?category=
func (h *ProjectHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Where("published = ?", true).Order("display_order asc")
	if cat := r.URL.Query().Get("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_projects", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, projects)
}

// PublicGet: GET /api/projects/{slug}
func (h *ProjectHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if err := h.DB.Where("slug = ? AND published = ?", r.PathValue("slug"), true).First(&project).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "project_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

// AdminList: GET /api/projects/admin
func (h *ProjectHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	var projects []models.Project
	if err := h.DB.Order("display_order asc").Find(&projects).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_projects", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, projects)
}

// Create: POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Published unless the payload says otherwise.
	project := models.Project{Published: true}
	if !decodeJSON(w, r, &project) {
		return
	}
	project.ID = 0
	v := validation.Violations{}
	validation.Required("title", project.Title, v)
	validation.Required("slug", project.Slug, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Create(&project).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "slug_already_exists", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

// Update: PUT /api/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "project_not_found", nil)
		return
	}
	var existing models.Project
	if err := h.DB.First(&existing, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "project_not_found", nil)
		return
	}
	var in models.Project
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = existing.ID
	in.CreatedAt = existing.CreatedAt
	if err := h.DB.Save(&in).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_project", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, in)
}

// Delete: DELETE /api/projects/{id} (admin only)
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "project_not_found", nil)
		return
	}
	res := h.DB.Delete(&models.Project{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_project", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "project_not_found", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "project_deleted")
}
