package httpx

import (
	"context"

	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions.
type sessionKey struct{}

// roleKey carries the per-request resolved role, which is authoritative
// over the role snapshot stored in the session.
type roleKey struct{}

// SetSessionInContext returns a child context carrying the session.
// A nil session returns ctx unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the session and whether one is present.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// SetRoleInContext records the directory-resolved role for the request.
func SetRoleInContext(ctx context.Context, role domainauth.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// GetRoleFromContext returns the resolved role for the request. Absent
// or invalid values report RoleNone, which downstream code treats as
// unauthenticated.
func GetRoleFromContext(ctx context.Context) domainauth.Role {
	if role, ok := ctx.Value(roleKey{}).(domainauth.Role); ok && role.Valid() {
		return role
	}
	return domainauth.RoleNone
}
