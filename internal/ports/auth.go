package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
)

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// ProviderIdentity is the principal returned by the identity provider.
// Adapters map provider-specific claims into this shape.
type ProviderIdentity struct {
	UserID    string
	Email     string
	Groups    []string
	ExpiresAt time.Time
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (ProviderIdentity, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to application roles at login time.
// The authoritative role still comes from the UserDirectory per request.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// UserDirectory resolves the authoritative role claim for a user.
// Implementations must distinguish "record missing" from store errors
// only for logging; callers treat both as unauthenticated (fail closed).
type UserDirectory interface {
	RoleOf(ctx context.Context, userID string) (domainauth.Role, error)
}

// UserProvisioner records a user in the directory at login time.
// Implementations keep an existing record's role untouched.
type UserProvisioner interface {
	Provision(ctx context.Context, userID, email string, role domainauth.Role) error
}
