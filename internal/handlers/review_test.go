package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/auth"
	"github.com/deployprime/agency-backend/internal/models"
)

func setupReviewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ClientUser{}, &models.Project{}, &models.Review{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *gorm.DB, name string) models.ClientUser {
	t.Helper()
	user := models.ClientUser{Name: name, Email: name + "@test", Password: "x", IsApproved: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return user
}

func seedProject(t *testing.T, db *gorm.DB, title, slug string) models.Project {
	t.Helper()
	project := models.Project{Title: title, Slug: slug, Published: true}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func submitReview(t *testing.T, h *ReviewHandler, clientID uint, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(body))
	req = req.WithContext(auth.WithClientID(req.Context(), clientID))
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func TestReviewSubmitAndModeration(t *testing.T) {
	db := setupReviewTestDB(t)
	admin := seedAdmin(t, db)
	client := seedClient(t, db, "jordan")
	project := seedProject(t, db, "Storefront", "storefront")
	h := NewReviewHandler(db)

	w := submitReview(t, h, client.ID,
		fmt.Sprintf(`{"projectId":%d,"rating":5,"reviewText":"Great work"}`, project.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var review models.Review
	if err := db.Where("client_user_id = ?", client.ID).First(&review).Error; err != nil {
		t.Fatalf("load review: %v", err)
	}
	if review.IsApproved {
		t.Error("new review must start unapproved")
	}
	if review.ClientName != "jordan" {
		t.Errorf("clientName = %q, want snapshot of submitter", review.ClientName)
	}

	// Second review for the same project is rejected.
	w = submitReview(t, h, client.ID,
		fmt.Sprintf(`{"projectId":%d,"rating":4,"reviewText":"Again"}`, project.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate review: expected 400 got %d", w.Code)
	}

	// Pending reviews stay off the public list.
	req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
	w = httptest.NewRecorder()
	h.PublicList(w, req)
	var listing struct {
		Reviews []publicReview `json:"reviews"`
		Stats   struct {
			Total         int     `json:"total"`
			AverageRating float64 `json:"averageRating"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listing.Stats.Total != 0 {
		t.Fatalf("pending review visible publicly: total=%d", listing.Stats.Total)
	}

	// Approve, then it shows up with project name and stats.
	areq := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/reviews/%d/approve", review.ID), nil)
	areq.SetPathValue("id", fmt.Sprint(review.ID))
	areq = areq.WithContext(auth.WithUserID(areq.Context(), admin.ID))
	w = httptest.NewRecorder()
	h.Approve(w, areq)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.PublicList(w, httptest.NewRequest(http.MethodGet, "/api/reviews", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listing.Stats.Total != 1 || listing.Stats.AverageRating != 5 {
		t.Errorf("stats = %+v, want total 1 avg 5", listing.Stats)
	}
	if len(listing.Reviews) != 1 || listing.Reviews[0].ProjectName != "Storefront" {
		t.Errorf("public review = %+v", listing.Reviews)
	}
}

func TestReviewAverageRatingRounding(t *testing.T) {
	db := setupReviewTestDB(t)
	h := NewReviewHandler(db)

	for i, rating := range []int{5, 4, 4} {
		client := seedClient(t, db, fmt.Sprintf("c%d", i))
		review := models.Review{ClientUserID: client.ID, ClientName: client.Name, Rating: rating, ReviewText: "ok", IsApproved: true}
		if err := db.Create(&review).Error; err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}

	w := httptest.NewRecorder()
	h.PublicList(w, httptest.NewRequest(http.MethodGet, "/api/reviews", nil))
	var listing struct {
		Stats struct {
			AverageRating float64 `json:"averageRating"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	// 13/3 rounded to one decimal
	if listing.Stats.AverageRating != 4.3 {
		t.Errorf("averageRating = %v, want 4.3", listing.Stats.AverageRating)
	}
}

func TestReviewSubmitValidation(t *testing.T) {
	db := setupReviewTestDB(t)
	client := seedClient(t, db, "jordan")
	h := NewReviewHandler(db)

	w := submitReview(t, h, client.ID, `{"rating":6,"reviewText":"too high"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rating 6: expected 400 got %d", w.Code)
	}
	w = submitReview(t, h, client.ID, `{"rating":3,"reviewText":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty text: expected 400 got %d", w.Code)
	}
	w = submitReview(t, h, client.ID, `{"projectId":999,"rating":3,"reviewText":"ghost"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown project: expected 404 got %d", w.Code)
	}

	// No client context at all.
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"rating":3,"reviewText":"x"}`))
	w = httptest.NewRecorder()
	h.Submit(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no client: expected 401 got %d", w.Code)
	}
}

func TestReviewReject(t *testing.T) {
	db := setupReviewTestDB(t)
	client := seedClient(t, db, "jordan")
	h := NewReviewHandler(db)

	review := models.Review{ClientUserID: client.ID, ClientName: client.Name, Rating: 2, ReviewText: "meh", IsApproved: true}
	if err := db.Create(&review).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/reviews/%d/reject", review.ID),
		strings.NewReader(`{"rejectionReason":"spam"}`))
	req.SetPathValue("id", fmt.Sprint(review.ID))
	w := httptest.NewRecorder()
	h.Reject(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("reject: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if err := db.First(&review, review.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if review.IsApproved || review.RejectionReason != "spam" {
		t.Errorf("rejection not recorded: approved=%v reason=%q", review.IsApproved, review.RejectionReason)
	}

	// Missing reason is a validation error.
	req = httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/reviews/%d/reject", review.ID),
		strings.NewReader(`{}`))
	req.SetPathValue("id", fmt.Sprint(review.ID))
	w = httptest.NewRecorder()
	h.Reject(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reject without reason: expected 400 got %d", w.Code)
	}
}
