package gate

import (
	"context"
	"errors"
)

// Sentinel error returned by Gate.Authorize.
var ErrUnauthorized = errors.New("unauthorized")

// Profile represents a role with a set of permissions.
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
}

// ProfileResolver resolves an admin user id to their profile.
// Returning (nil, nil) means the user has no profile and is denied.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID uint) (Profile, error)
}

// StaticProfile is an in-memory profile with a fixed permission set.
type StaticProfile struct {
	name        string
	permissions []Permission
}

// NewStaticProfile creates a profile with the given permissions.
func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	return &StaticProfile{name: name, permissions: permissions}
}

func (p *StaticProfile) Name() string { return p.name }

// HasPermission checks the requested permission against the profile's
// set, honoring wildcard entries.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	for _, perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// StaticResolver maps user ids to fixed profiles. Used in tests.
type StaticResolver struct {
	profiles map[uint]Profile
}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{profiles: make(map[uint]Profile)}
}

func (r *StaticResolver) Set(userID uint, profile Profile) {
	r.profiles[userID] = profile
}

func (r *StaticResolver) Resolve(_ context.Context, userID uint) (Profile, error) {
	if profile, ok := r.profiles[userID]; ok {
		return profile, nil
	}
	return nil, nil
}
