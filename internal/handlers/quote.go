package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/models"
	"github.com/deployprime/agency-backend/internal/services"
	"github.com/deployprime/agency-backend/validation"
)

// QuoteHandler: public quote requests from the contact form plus the
// admin triage surface. Notification delivery is best-effort.
type QuoteHandler struct {
	DB       *gorm.DB
	Notifier services.QuoteNotifier
}

func NewQuoteHandler(db *gorm.DB, notifier services.QuoteNotifier) *QuoteHandler {
	return &QuoteHandler{DB: db, Notifier: notifier}
}

// Submit: POST /api/quotes (public)
func (h *QuoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		ProjectType string `json:"projectType"`
		Message     string `json:"message"`
		Budget      string `json:"budget"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.Email("email", req.Email, v)
	validation.Required("message", req.Message, v)
	validation.MaxLen("message", req.Message, 5000, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	quote := models.Quote{
		Reference:   "Q-" + uuid.NewString()[:8],
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		ProjectType: req.ProjectType,
		Message:     req.Message,
		Budget:      req.Budget,
		Status:      models.QuoteNew,
	}
	if err := h.DB.Create(&quote).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_submit_quote", nil)
		return
	}
	if h.Notifier != nil {
		if err := h.Notifier.NotifyQuote(&quote); err != nil {
			// The quote is saved; delivery problems are ops, not client, errors.
			log.Printf("quote notification failed ref=%s: %v", quote.Reference, err)
		}
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":   "quote_received",
		"reference": quote.Reference,
	})
}

// AdminList: GET /api/quotes?status=
func (h *QuoteHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("created_at desc")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var quotes []models.Quote
	if err := q.Find(&quotes).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_quotes", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, quotes)
}

// UpdateStatus: PATCH /api/quotes/{id}/status
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "quote_not_found", nil)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	v := validation.Violations{}
	validation.OneOf("status", req.Status, v, models.QuoteNew, models.QuoteInProgress, models.QuoteClosed)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	res := h.DB.Model(&models.Quote{}).Where("id = ?", id).Update("status", req.Status)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_quote", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "quote_not_found", nil)
		return
	}
	var quote models.Quote
	if err := h.DB.First(&quote, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}
