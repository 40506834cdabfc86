package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// The zero value means "unauthenticated"; there is no guest role, an
// actor either carries a known role or is treated as anonymous.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	// RoleNone is the zero value and marks an unauthenticated actor.
	RoleNone Role = ""
)

// Valid reports whether r is one of the known authenticated roles.
// Unknown values (including the zero value) are not valid; callers
// must treat them as unauthenticated.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// ParseRole maps a raw role claim (e.g. a database column value) to a
// Role. Unknown values return RoleNone and false so callers fail closed.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return RoleNone, false
	}
}

// Identity is the last-known authenticated principal held by a tab's
// session cache. FetchedAt records when it was obtained from the
// identity provider; an Identity older than the freshness window must
// be re-fetched before being trusted for a new access decision.
type Identity struct {
	UserID    string
	Email     string
	Role      Role
	FetchedAt time.Time
}

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
// Role is the role claim captured at login time; the request guard
// re-resolves the authoritative role from the user directory.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
