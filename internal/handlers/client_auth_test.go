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

func setupClientTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ClientUser{}, &models.ClientPasswordHistory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestClientRegisterAndLogin(t *testing.T) {
	db := setupClientTestDB(t)
	h := NewClientAuthHandler(db)

	w := postJSON(t, h.Register, "/api/client-auth/register",
		`{"name":"Jordan","email":"jordan@test.dev","password":"secret1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var user models.ClientUser
	if err := db.Where("email = ?", "jordan@test.dev").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.IsApproved {
		t.Error("new registration must start unapproved")
	}
	var historyCount int64
	db.Model(&models.ClientPasswordHistory{}).Where("client_user_id = ?", user.ID).Count(&historyCount)
	if historyCount != 1 {
		t.Errorf("history entries = %d, want 1", historyCount)
	}

	// Duplicate identity is rejected.
	w = postJSON(t, h.Register, "/api/client-auth/register",
		`{"name":"Other","email":"jordan@test.dev","password":"secret2"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400 got %d", w.Code)
	}

	// Login issues a usable bearer token.
	w = postJSON(t, h.Login, "/api/client-auth/login",
		`{"email":"jordan@test.dev","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	cid, ok := auth.ParseClientToken(resp.Token)
	if !ok || cid != user.ID {
		t.Fatalf("token resolves to (%d, %v), want (%d, true)", cid, ok, user.ID)
	}

	// Wrong password.
	w = postJSON(t, h.Login, "/api/client-auth/login",
		`{"email":"jordan@test.dev","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401 got %d", w.Code)
	}
}

func TestClientRegisterRequiresIdentity(t *testing.T) {
	db := setupClientTestDB(t)
	h := NewClientAuthHandler(db)

	w := postJSON(t, h.Register, "/api/client-auth/register",
		`{"name":"Nobody","password":"secret1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestClientRegisterWithPhoneOnly(t *testing.T) {
	db := setupClientTestDB(t)
	h := NewClientAuthHandler(db)

	w := postJSON(t, h.Register, "/api/client-auth/register",
		`{"name":"Phoner","phone":"+15550123","password":"secret1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	w = postJSON(t, h.Login, "/api/client-auth/login",
		`{"phone":"+15550123","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("phone login: expected 200 got %d", w.Code)
	}
}

func TestClientForgotPasswordHistory(t *testing.T) {
	db := setupClientTestDB(t)
	h := NewClientAuthHandler(db)

	postJSON(t, h.Register, "/api/client-auth/register",
		`{"name":"Jordan","email":"jordan@test.dev","password":"first-pass"}`)

	// Reset with the current password.
	w := postJSON(t, h.ForgotPassword, "/api/client-auth/forgot-password",
		`{"email":"jordan@test.dev","oldPassword":"first-pass","newPassword":"second-pass"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	// The retired password still proves ownership via history.
	w = postJSON(t, h.ForgotPassword, "/api/client-auth/forgot-password",
		`{"email":"jordan@test.dev","oldPassword":"first-pass","newPassword":"third-pass"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("reset via history: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	// A password never used is rejected.
	w = postJSON(t, h.ForgotPassword, "/api/client-auth/forgot-password",
		`{"email":"jordan@test.dev","oldPassword":"never-used","newPassword":"fourth-pass"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("reset with unknown password: expected 401 got %d", w.Code)
	}

	// Login only works with the latest password.
	w = postJSON(t, h.Login, "/api/client-auth/login",
		`{"email":"jordan@test.dev","password":"third-pass"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login with new password: expected 200 got %d", w.Code)
	}
	w = postJSON(t, h.Login, "/api/client-auth/login",
		`{"email":"jordan@test.dev","password":"first-pass"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login with retired password: expected 401 got %d", w.Code)
	}

	// History stays bounded.
	var user models.ClientUser
	if err := db.Where("email = ?", "jordan@test.dev").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	var historyCount int64
	db.Model(&models.ClientPasswordHistory{}).Where("client_user_id = ?", user.ID).Count(&historyCount)
	if historyCount > 3 {
		t.Errorf("history entries = %d, want at most 3", historyCount)
	}
}

func TestClientAdminApproveAndDelete(t *testing.T) {
	db := setupClientTestDB(t)
	admin := seedAdmin(t, db)
	h := NewClientAuthHandler(db)

	postJSON(t, h.Register, "/api/client-auth/register",
		`{"name":"Jordan","email":"jordan@test.dev","password":"secret1"}`)
	var user models.ClientUser
	if err := db.Where("email = ?", "jordan@test.dev").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/client-auth/admin/users/%d/approve", user.ID), nil)
	req.SetPathValue("id", fmt.Sprint(user.ID))
	req = req.WithContext(auth.WithUserID(req.Context(), admin.ID))
	w := httptest.NewRecorder()
	h.AdminApprove(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if err := db.First(&user, user.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !user.IsApproved || user.ApprovedAt == nil || user.ApprovedByID != admin.ID {
		t.Errorf("approval not recorded: approved=%v at=%v by=%d", user.IsApproved, user.ApprovedAt, user.ApprovedByID)
	}

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/client-auth/admin/users/%d", user.ID), nil)
	req.SetPathValue("id", fmt.Sprint(user.ID))
	req = req.WithContext(auth.WithUserID(req.Context(), admin.ID))
	w = httptest.NewRecorder()
	h.AdminDelete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", w.Code)
	}
	var count int64
	db.Model(&models.ClientUser{}).Where("id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Error("user not deleted")
	}
}
