package server

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/auth"
	"github.com/deployprime/agency-backend/gate"
	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/config"
	"github.com/deployprime/agency-backend/internal/handlers"
	"github.com/deployprime/agency-backend/internal/middleware"
	"github.com/deployprime/agency-backend/internal/models"
	"github.com/deployprime/agency-backend/internal/policy"
	"github.com/deployprime/agency-backend/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares
// applied. The public surface (contract links, site content, quotes)
// carries no auth; admin routes stack session auth plus the role gate;
// portal routes use client bearer tokens.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	// Sessions referencing deleted admins are rejected.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	authGate := policy.NewAuthGate(db, 5*time.Minute)
	admin := func(resource string, action gate.Action, h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(authGate.RequirePermission(resource, action)(h)))
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(authGate.RequireAdmin()(h)))
	}
	client := func(h http.HandlerFunc) http.Handler {
		return auth.RequireClient(h)
	}

	// Health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Admin auth
	ah := handlers.NewAuthHandler(db)
	ah.RoleChanged = authGate.InvalidateUser
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.Handle("GET /api/auth/me", auth.Middleware(http.HandlerFunc(ah.Me)))
	mux.HandleFunc("POST /api/auth/logout", ah.Logout)
	mux.Handle("GET /api/auth/users", adminOnly(ah.ListUsers))
	mux.Handle("PATCH /api/auth/users/{id}/role", adminOnly(ah.UpdateRole))

	// Contracts
	contractSvc := services.NewContractService(db, cfg.FrontendURL)
	ch := handlers.NewContractHandler(contractSvc)
	mux.Handle("POST /api/contracts", admin("contract", gate.ActionCreate, ch.Create))
	mux.Handle("GET /api/contracts/admin", admin("contract", gate.ActionList, ch.List))
	mux.Handle("GET /api/contracts/admin/{id}", admin("contract", gate.ActionView, ch.Get))
	mux.Handle("PUT /api/contracts/{id}", admin("contract", gate.ActionUpdate, ch.Update))
	mux.Handle("DELETE /api/contracts/{id}", admin("contract", gate.ActionDelete, ch.Delete))
	mux.Handle("GET /api/contracts/admin/{id}/pdf", admin("contract", gate.ActionView, ch.PDF))
	mux.HandleFunc("GET /api/contracts/{token}", ch.PublicGet)
	mux.HandleFunc("POST /api/contracts/{token}/sign", ch.Sign)

	// Client portal
	cah := handlers.NewClientAuthHandler(db)
	mux.HandleFunc("POST /api/client-auth/register", cah.Register)
	mux.HandleFunc("POST /api/client-auth/login", cah.Login)
	mux.HandleFunc("POST /api/client-auth/forgot-password", cah.ForgotPassword)
	mux.Handle("GET /api/client-auth/me", client(cah.Me))
	mux.Handle("GET /api/client-auth/admin/users", admin("clientuser", gate.ActionList, cah.AdminList))
	mux.Handle("PATCH /api/client-auth/admin/users/{id}/approve", admin("clientuser", gate.ActionApprove, cah.AdminApprove))
	mux.Handle("DELETE /api/client-auth/admin/users/{id}", adminOnly(cah.AdminDelete))

	// Reviews
	rh := handlers.NewReviewHandler(db)
	mux.HandleFunc("GET /api/reviews", rh.PublicList)
	mux.Handle("POST /api/reviews", client(rh.Submit))
	mux.Handle("GET /api/reviews/admin", admin("review", gate.ActionList, rh.AdminList))
	mux.Handle("PATCH /api/reviews/{id}/approve", admin("review", gate.ActionApprove, rh.Approve))
	mux.Handle("PATCH /api/reviews/{id}/reject", admin("review", gate.ActionApprove, rh.Reject))
	mux.Handle("DELETE /api/reviews/{id}", adminOnly(rh.Delete))

	// Services
	sh := handlers.NewServiceHandler(db)
	mux.HandleFunc("GET /api/services", sh.PublicList)
	mux.Handle("GET /api/services/admin", admin("service", gate.ActionList, sh.AdminList))
	mux.HandleFunc("GET /api/services/{slug}", sh.PublicGet)
	mux.Handle("POST /api/services", admin("service", gate.ActionCreate, sh.Create))
	mux.Handle("PUT /api/services/{id}", admin("service", gate.ActionUpdate, sh.Update))
	mux.Handle("DELETE /api/services/{id}", adminOnly(sh.Delete))

	// Projects
	ph := handlers.NewProjectHandler(db)
	mux.HandleFunc("GET /api/projects", ph.PublicList)
	mux.Handle("GET /api/projects/admin", admin("project", gate.ActionList, ph.AdminList))
	mux.HandleFunc("GET /api/projects/{slug}", ph.PublicGet)
	mux.Handle("POST /api/projects", admin("project", gate.ActionCreate, ph.Create))
	mux.Handle("PUT /api/projects/{id}", admin("project", gate.ActionUpdate, ph.Update))
	mux.Handle("DELETE /api/projects/{id}", adminOnly(ph.Delete))

	// Blogs
	bh := handlers.NewBlogHandler(db)
	mux.HandleFunc("GET /api/blogs", bh.PublicList)
	mux.Handle("GET /api/blogs/admin", admin("blog", gate.ActionList, bh.AdminList))
	mux.HandleFunc("GET /api/blogs/{slug}", bh.PublicGet)
	mux.Handle("POST /api/blogs", admin("blog", gate.ActionCreate, bh.Create))
	mux.Handle("PUT /api/blogs/{id}", admin("blog", gate.ActionUpdate, bh.Update))
	mux.Handle("DELETE /api/blogs/{id}", adminOnly(bh.Delete))

	// Quotes
	notifier := services.NewSMTPNotifier(cfg.SMTP, cfg.AdminEmail)
	qh := handlers.NewQuoteHandler(db, notifier)
	mux.HandleFunc("POST /api/quotes", qh.Submit)
	mux.Handle("GET /api/quotes", admin("quote", gate.ActionList, qh.AdminList))
	mux.Handle("PATCH /api/quotes/{id}/status", admin("quote", gate.ActionUpdate, qh.UpdateStatus))

	// Site settings
	sth := handlers.NewSettingsHandler(db)
	mux.HandleFunc("GET /api/site-settings", sth.Get)
	mux.Handle("PUT /api/site-settings", adminOnly(sth.Update))

	// SEO
	pub := handlers.NewPublicHandler(db, cfg.FrontendURL)
	mux.HandleFunc("GET /api/sitemap.xml", pub.Sitemap)
	mux.HandleFunc("GET /api/robots.txt", pub.Robots)

	limiter := middleware.NewRateLimiter(2, 100)
	chain := middleware.SecureHeaders(mux)
	chain = limiter.Middleware(chain)
	chain = middleware.CORS(cfg.FrontendURL)(chain)
	chain = middleware.Logging(chain)
	chain = middleware.RequestID(chain)
	return withRecover(chain)
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
