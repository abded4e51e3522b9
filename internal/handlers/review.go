package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/auth"
	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/models"
	"github.com/deployprime/agency-backend/validation"
)

// ReviewHandler moderates client reviews: clients submit, admins
// approve or reject, the public only ever sees approved ones.
type ReviewHandler struct{ DB *gorm.DB }

func NewReviewHandler(db *gorm.DB) *ReviewHandler { return &ReviewHandler{DB: db} }

// publicReview is the trimmed shape served to the site; no client
// contact details leak out.
type publicReview struct {
	ID          uint      `json:"id"`
	ClientName  string    `json:"clientName"`
	Rating      int       `json:"rating"`
	ReviewText  string    `json:"reviewText"`
	ProjectName string    `json:"projectName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PublicList: GET /api/reviews?projectId= — approved reviews plus
// aggregate stats.
func (h *ReviewHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Where("is_approved = ?", true).Preload("Project").Order("created_at desc")
	if pid := r.URL.Query().Get("projectId"); pid != "" {
		if id, err := strconv.ParseUint(pid, 10, 64); err == nil {
			q = q.Where("project_id = ?", uint(id))
		}
	}
	var reviews []models.Review
	if err := q.Find(&reviews).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_reviews", nil)
		return
	}
	out := make([]publicReview, 0, len(reviews))
	var ratingSum int
	for _, rev := range reviews {
		name := rev.ProjectName
		if rev.Project != nil {
			name = rev.Project.Title
		}
		out = append(out, publicReview{
			ID:          rev.ID,
			ClientName:  rev.ClientName,
			Rating:      rev.Rating,
			ReviewText:  rev.ReviewText,
			ProjectName: name,
			CreatedAt:   rev.CreatedAt,
		})
		ratingSum += rev.Rating
	}
	avg := 0.0
	if len(out) > 0 {
		// one decimal, matching what the site displays
		avg = math.Round(float64(ratingSum)/float64(len(out))*10) / 10
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"reviews": out,
		"stats":   map[string]any{"total": len(out), "averageRating": avg},
	})
}

// Submit: POST /api/reviews (client token). One review per client per
// project.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	cid, ok := auth.ClientIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		ProjectID  uint   `json:"projectId"`
		Rating     int    `json:"rating"`
		ReviewText string `json:"reviewText"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	v := validation.Violations{}
	validation.RangeInt("rating", req.Rating, 1, 5, v)
	validation.Required("reviewText", req.ReviewText, v)
	validation.MaxLen("reviewText", req.ReviewText, 1000, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var client models.ClientUser
	if err := h.DB.First(&client, cid).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	review := models.Review{
		ClientUserID: cid,
		ClientName:   client.Name,
		Rating:       req.Rating,
		ReviewText:   req.ReviewText,
	}
	if req.ProjectID != 0 {
		var project models.Project
		if err := h.DB.First(&project, req.ProjectID).Error; err != nil {
			httpx.JSONError(w, http.StatusNotFound, "project_not_found", nil)
			return
		}
		var count int64
		h.DB.Model(&models.Review{}).Where("client_user_id = ? AND project_id = ?", cid, req.ProjectID).Count(&count)
		if count > 0 {
			httpx.JSONError(w, http.StatusBadRequest, "already_reviewed_project", nil)
			return
		}
		review.ProjectID = req.ProjectID
		review.ProjectName = project.Title
	}

	if err := h.DB.Create(&review).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_submit_review", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "review_pending_approval",
		"review":  review,
	})
}

// AdminList: GET /api/reviews/admin?status=pending|approved
func (h *ReviewHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Preload("ClientUser").Preload("Project").Preload("ApprovedBy").Order("created_at desc")
	switch r.URL.Query().Get("status") {
	case "pending":
		q = q.Where("is_approved = ?", false)
	case "approved":
		q = q.Where("is_approved = ?", true)
	}
	var reviews []models.Review
	if err := q.Find(&reviews).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_reviews", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, reviews)
}

// Approve: PATCH /api/reviews/{id}/approve
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "review_not_found", nil)
		return
	}
	now := time.Now()
	res := h.DB.Model(&models.Review{}).Where("id = ?", id).Updates(map[string]any{
		"is_approved":      true,
		"approved_by_id":   uid,
		"approved_at":      now,
		"rejection_reason": "",
	})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_approve_review", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "review_not_found", nil)
		return
	}
	var review models.Review
	if err := h.DB.Preload("ClientUser").Preload("Project").First(&review, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, review)
}

// Reject: PATCH /api/reviews/{id}/reject
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "review_not_found", nil)
		return
	}
	var req struct {
		RejectionReason string `json:"rejectionReason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	v := validation.Violations{}
	validation.Required("rejectionReason", req.RejectionReason, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	res := h.DB.Model(&models.Review{}).Where("id = ?", id).Updates(map[string]any{
		"is_approved":      false,
		"rejection_reason": req.RejectionReason,
	})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_reject_review", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "review_not_found", nil)
		return
	}
	var review models.Review
	if err := h.DB.First(&review, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, review)
}

// Delete: DELETE /api/reviews/{id} (admin only)
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "review_not_found", nil)
		return
	}
	res := h.DB.Delete(&models.Review{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_review", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "review_not_found", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "review_deleted")
}
