// Package policy maps admin roles to gate profiles and exposes the
// HTTP middleware used to protect admin routes.
package policy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/auth"
	"github.com/deployprime/agency-backend/gate"
	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/models"
)

// Role profiles. Admins can do everything; editors manage content and
// contracts but cannot delete records, touch site settings, or remove
// portal users.
var (
	adminProfile = gate.NewStaticProfile(models.RoleAdmin, gate.PermissionSuperAdmin)

	editorProfile = gate.NewStaticProfile(models.RoleEditor,
		gate.NewPermission("contract", gate.ActionCreate),
		gate.NewPermission("contract", gate.ActionUpdate),
		gate.NewPermission("contract", gate.ActionList),
		gate.NewPermission("contract", gate.ActionView),
		gate.Permission("service:*"),
		gate.Permission("project:*"),
		gate.Permission("blog:*"),
		gate.NewPermission("review", gate.ActionList),
		gate.NewPermission("review", gate.ActionApprove),
		gate.NewPermission("quote", gate.ActionList),
		gate.NewPermission("quote", gate.ActionUpdate),
		gate.NewPermission("clientuser", gate.ActionList),
		gate.NewPermission("clientuser", gate.ActionApprove),
	)
)

// RoleResolver looks up the admin's role in the database and returns
// the matching static profile. Wrapped in a gate.CachedResolver by
// NewAuthGate so the lookup does not run on every request.
type RoleResolver struct {
	DB *gorm.DB
}

func (r *RoleResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Select("id", "role").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	switch user.Role {
	case models.RoleAdmin:
		return adminProfile, nil
	case models.RoleEditor:
		return editorProfile, nil
	}
	return nil, nil
}

// AuthGate bundles the gate with its cache so role changes can be
// invalidated at the point of mutation.
type AuthGate struct {
	Gate          *gate.Gate
	CacheResolver *gate.CachedResolver
}

// NewAuthGate creates the authorization gate used by the router.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver(&RoleResolver{DB: db}, cacheTTL)
	return &AuthGate{Gate: gate.New(cached), CacheResolver: cached}
}

// RequirePermission returns middleware that checks resource:action for
// the session user. 401 when unauthenticated, 403 when denied — the
// same 403 whether or not the resource exists.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if !ag.Gate.Can(r.Context(), userID, action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin only admits users whose profile carries "*:*".
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if !ag.Gate.IsSuperAdmin(r.Context(), userID) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// InvalidateUser clears the cached profile after a role change.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}
