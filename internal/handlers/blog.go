package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/models"
	"github.com/deployprime/agency-backend/validation"
)

// BlogHandler: blog posts with draft/published state. Publishing a
// draft stamps PublishedAt.
type BlogHandler struct{ DB *gorm.DB }

func NewBlogHandler(db *gorm.DB) *BlogHandler { return &BlogHandler{DB: db} }

// PublicList: GET /api/blogs?page=&limit= — published posts, paginated,
// newest first.
func (h *BlogHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	base := h.DB.Model(&models.Blog{}).Where("draft = ?", false)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_blogs", nil)
		return
	}
	var blogs []models.Blog
	if err := h.DB.Where("draft = ?", false).Order("published_at desc").
		Limit(limit).Offset((page - 1) * limit).Find(&blogs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_blogs", nil)
		return
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	httpx.JSON(w, http.StatusOK, map[string]any{
		"blogs": blogs,
		"pagination": map[string]any{
			"page": page, "limit": limit, "total": total, "pages": pages,
		},
	})
}

// PublicGet: GET /api/blogs/{slug}
func (h *BlogHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	var blog models.Blog
	if err := h.DB.Where("slug = ? AND draft = ?", r.PathValue("slug"), false).First(&blog).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "blog_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, blog)
}

// AdminList: GET /api/blogs/admin — drafts included, newest first.
func (h *BlogHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	var blogs []models.Blog
	if err := h.DB.Order("created_at desc").Find(&blogs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_blogs", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, blogs)
}

// Create: POST /api/blogs
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	// New posts are drafts unless the payload says otherwise.
	blog := models.Blog{Draft: true}
	if !decodeJSON(w, r, &blog) {
		return
	}
	blog.ID = 0
	v := validation.Violations{}
	validation.Required("title", blog.Title, v)
	validation.Required("slug", blog.Slug, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if !blog.Draft && blog.PublishedAt == nil {
		now := time.Now()
		blog.PublishedAt = &now
	}
	if err := h.DB.Create(&blog).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "slug_already_exists", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, blog)
}

// Update: PUT /api/blogs/{id}
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "blog_not_found", nil)
		return
	}
	var existing models.Blog
	if err := h.DB.First(&existing, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "blog_not_found", nil)
		return
	}
	var in models.Blog
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = existing.ID
	in.CreatedAt = existing.CreatedAt
	if in.PublishedAt == nil {
		in.PublishedAt = existing.PublishedAt
	}
	if !in.Draft && in.PublishedAt == nil {
		now := time.Now()
		in.PublishedAt = &now
	}
	if err := h.DB.Save(&in).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_blog", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, in)
}

// Delete: DELETE /api/blogs/{id} (admin only)
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "blog_not_found", nil)
		return
	}
	res := h.DB.Delete(&models.Blog{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_blog", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "blog_not_found", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "blog_deleted")
}
