package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/auth"
	"github.com/deployprime/agency-backend/internal/models"
	"github.com/deployprime/agency-backend/internal/services"
)

func setupContractTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Contract{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedAdmin(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Name: "Admin", Email: "admin@test", Password: "x", Role: models.RoleAdmin}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return user
}

func createContract(t *testing.T, h *ContractHandler, adminID uint) (contractID uint, token string) {
	t.Helper()
	body := `{"projectName":"Site","projectDescription":"Build it","totalPrice":5000,
		"duration":6,"durationUnit":"weeks","advancePercentage":30,"midPercentage":40,"finalPercentage":30}`
	req := httptest.NewRequest(http.MethodPost, "/api/contracts", strings.NewReader(body))
	req = req.WithContext(auth.WithUserID(req.Context(), adminID))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Contract struct {
			ID uint `json:"id"`
		} `json:"contract"`
		ShareableURL string `json:"shareableUrl"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	parts := strings.Split(resp.ShareableURL, "/")
	return resp.Contract.ID, parts[len(parts)-1]
}

func newContractHandler(db *gorm.DB) *ContractHandler {
	return NewContractHandler(services.NewContractService(db, "https://example.com"))
}

func TestContractCreateResponseHidesToken(t *testing.T) {
	db := setupContractTestDB(t)
	admin := seedAdmin(t, db)
	h := newContractHandler(db)

	_, token := createContract(t, h, admin.ID)
	if len(token) != 64 {
		t.Fatalf("shareable url does not end in a 64-char token: %q", token)
	}

	// The serialized contract object must not carry the raw token.
	req := httptest.NewRequest(http.MethodGet, "/api/contracts/admin", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), admin.ID))
	w := httptest.NewRecorder()
	h.List(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), token) {
		t.Fatal("admin list leaked the shareable token")
	}
}

func TestContractPublicViewAndSign(t *testing.T) {
	db := setupContractTestDB(t)
	admin := seedAdmin(t, db)
	h := newContractHandler(db)
	_, token := createContract(t, h, admin.ID)

	// Public view flips to viewed.
	req := httptest.NewRequest(http.MethodGet, "/api/contracts/"+token, nil)
	req.SetPathValue("token", token)
	w := httptest.NewRecorder()
	h.PublicGet(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("view: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var viewed models.Contract
	if err := json.Unmarshal(w.Body.Bytes(), &viewed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if viewed.Status != models.ContractViewed {
		t.Fatalf("status = %q, want viewed", viewed.Status)
	}

	// Sign it.
	body := `{"clientName":"Jordan","clientEmail":"j@c.test","clientPhone":"+15550100",
		"signatureType":"drawn","signatureData":"data:image/png;base64,aaaa"}`
	req = httptest.NewRequest(http.MethodPost, "/api/contracts/"+token+"/sign", strings.NewReader(body))
	req.SetPathValue("token", token)
	req.RemoteAddr = "203.0.113.9:51234"
	w = httptest.NewRecorder()
	h.Sign(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sign: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var signed models.Contract
	if err := json.Unmarshal(w.Body.Bytes(), &signed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if signed.Status != models.ContractSigned {
		t.Fatalf("status = %q, want signed", signed.Status)
	}
	if signed.Signature.IPAddress != "203.0.113.9" {
		t.Fatalf("ip = %q, want connection address", signed.Signature.IPAddress)
	}

	// Second signature: 409.
	req = httptest.NewRequest(http.MethodPost, "/api/contracts/"+token+"/sign", strings.NewReader(body))
	req.SetPathValue("token", token)
	w = httptest.NewRecorder()
	h.Sign(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("re-sign: expected 409 got %d", w.Code)
	}
}

func TestContractUnknownTokenUniform404(t *testing.T) {
	db := setupContractTestDB(t)
	h := newContractHandler(db)

	for _, token := range []string{strings.Repeat("a", 64), "short", "not-hex-at-all"} {
		req := httptest.NewRequest(http.MethodGet, "/api/contracts/"+token, nil)
		req.SetPathValue("token", token)
		w := httptest.NewRecorder()
		h.PublicGet(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("token %q: expected 404 got %d", token, w.Code)
		}
	}
}

func TestContractExpiredReturns410(t *testing.T) {
	db := setupContractTestDB(t)
	admin := seedAdmin(t, db)
	svc := services.NewContractService(db, "https://example.com")
	h := NewContractHandler(svc)
	_, token := createContract(t, h, admin.ID)

	svc.Now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	req := httptest.NewRequest(http.MethodGet, "/api/contracts/"+token, nil)
	req.SetPathValue("token", token)
	w := httptest.NewRecorder()
	h.PublicGet(w, req)
	if w.Code != http.StatusGone {
		t.Fatalf("expected 410 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestContractSignValidation400(t *testing.T) {
	db := setupContractTestDB(t)
	admin := seedAdmin(t, db)
	h := newContractHandler(db)
	_, token := createContract(t, h, admin.ID)

	req := httptest.NewRequest(http.MethodPost, "/api/contracts/"+token+"/sign", strings.NewReader(`{"clientName":""}`))
	req.SetPathValue("token", token)
	w := httptest.NewRecorder()
	h.Sign(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestContractUpdateBadSum400(t *testing.T) {
	db := setupContractTestDB(t)
	admin := seedAdmin(t, db)
	h := newContractHandler(db)
	id, _ := createContract(t, h, admin.ID)

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/contracts/%d", id), strings.NewReader(`{"finalPercentage":29}`))
	req.SetPathValue("id", fmt.Sprint(id))
	req = req.WithContext(auth.WithUserID(req.Context(), admin.ID))
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestContractDelete(t *testing.T) {
	db := setupContractTestDB(t)
	admin := seedAdmin(t, db)
	h := newContractHandler(db)
	id, token := createContract(t, h, admin.ID)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/contracts/%d", id), nil)
	req.SetPathValue("id", fmt.Sprint(id))
	req = req.WithContext(auth.WithUserID(req.Context(), admin.ID))
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", w.Code)
	}

	// The link stops resolving.
	req = httptest.NewRequest(http.MethodGet, "/api/contracts/"+token, nil)
	req.SetPathValue("token", token)
	w = httptest.NewRecorder()
	h.PublicGet(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete got %d", w.Code)
	}
}
