package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, 42)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	uid, ok := ParseSession(req)
	if !ok || uid != 42 {
		t.Fatalf("ParseSession = (%d, %v), want (42, true)", uid, ok)
	}
}

func TestSessionTamperRejected(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, 42)
	cookie := w.Result().Cookies()[0]

	// Swap the user id but keep the signature.
	parts := strings.SplitN(cookie.Value, ".", 2)
	cookie.Value = "7." + parts[1]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	if _, ok := ParseSession(req); ok {
		t.Fatal("tampered session accepted")
	}
}

func TestSessionGarbageRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "not-a-session"})
	if _, ok := ParseSession(req); ok {
		t.Fatal("garbage session accepted")
	}
}

func TestRequireAuthWithoutSession(t *testing.T) {
	handler := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without session")
	})))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestClientTokenRoundTrip(t *testing.T) {
	token, _, err := MintClientToken(7)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	cid, ok := ParseClientToken(token)
	if !ok || cid != 7 {
		t.Fatalf("ParseClientToken = (%d, %v), want (7, true)", cid, ok)
	}
}

func TestClientTokenGarbageRejected(t *testing.T) {
	if _, ok := ParseClientToken("garbage.token.value"); ok {
		t.Fatal("garbage token accepted")
	}
}

func TestRequireClient(t *testing.T) {
	token, _, err := MintClientToken(7)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	var gotID uint
	handler := RequireClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = ClientIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotID != 7 {
		t.Fatalf("client id in context = %d, want 7", gotID)
	}

	// No header at all.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", w.Code)
	}
}
