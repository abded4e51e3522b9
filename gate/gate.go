// Package gate provides role-based authorization for the admin API.
// A Gate resolves the requesting user to a Profile (a named set of
// permissions) and checks "resource:action" permissions against it,
// with wildcard support. Profile lookups go through a TTL cache so the
// database is not hit on every request.
package gate

import "context"

// Gate is the central authorization checkpoint for admin users,
// addressed by their numeric user id.
type Gate struct {
	resolver ProfileResolver
}

// New creates a gate backed by the given profile resolver.
func New(resolver ProfileResolver) *Gate {
	return &Gate{resolver: resolver}
}

// Authorize returns nil if the user's profile grants resource:action.
// A zero user id, a failed resolve, or a missing permission all yield
// ErrUnauthorized; callers should not distinguish between them.
func (g *Gate) Authorize(ctx context.Context, userID uint, action Action, resourceType string) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, userID)
	if err != nil || profile == nil {
		return ErrUnauthorized
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate) Can(ctx context.Context, userID uint, action Action, resourceType string) bool {
	return g.Authorize(ctx, userID, action, resourceType) == nil
}

// IsSuperAdmin reports whether the user's profile carries the "*:*"
// permission.
func (g *Gate) IsSuperAdmin(ctx context.Context, userID uint) bool {
	if userID == 0 {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, userID)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(PermissionSuperAdmin)
}
