package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Hissaria17/alcrm-sub001/internal/broadcast"
	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
	apperrors "github.com/Hissaria17/alcrm-sub001/internal/errors"
	"github.com/Hissaria17/alcrm-sub001/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider  ports.AuthProvider
	Sessions  ports.SessionStore
	Roles     ports.RoleMapper
	Directory ports.UserDirectory
	// Provisioner records first-time users in the directory at login.
	// Optional; when nil users must be provisioned out of band.
	Provisioner ports.UserProvisioner
	// Broadcast carries the cross-tab logout signal. Optional; when nil
	// logout still invalidates the session, it just is not broadcast.
	Broadcast broadcast.Publisher
}

// AuthService orchestrates authentication flows: provider exchange,
// role mapping, session persistence, per-request role resolution, and
// logout broadcasting.
type AuthService struct {
	provider    ports.AuthProvider
	sessions    ports.SessionStore
	roles       ports.RoleMapper
	directory   ports.UserDirectory
	provisioner ports.UserProvisioner
	bcast       broadcast.Publisher
}

var errSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider:    opts.Provider,
		sessions:    opts.Sessions,
		roles:       opts.Roles,
		directory:   opts.Directory,
		provisioner: opts.Provisioner,
		bcast:       opts.Broadcast,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider
// auth URL with state and nonce. The post-login return target is not
// part of this flow; the handler carries it in a cookie.
func (s *AuthService) BeginLogin(ctx context.Context) (*BeginLoginResult, error) {
	authURL, state, nonce, err := s.provider.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin completes an authentication flow by exchanging the code
// for an identity, mapping the initial role, and persisting a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	role := s.roles.Map(identity.Groups)

	if s.provisioner != nil && role.Valid() {
		if provErr := s.provisioner.Provision(ctx, identity.UserID, identity.Email, role); provErr != nil {
			return nil, fmt.Errorf("provision user: %w", provErr)
		}
	}

	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		Email:     identity.Email,
		Role:      role,
		ExpiresAt: identity.ExpiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &CompleteLoginResult{Session: session}, nil
}

// GetSession retrieves a session by ID. Expired sessions are deleted
// and reported as an error.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// ResolveRole fetches the authoritative role claim for a user from the
// user directory. A missing record, a store error, or an unknown role
// value all degrade to an Unauthenticated error so callers fail closed;
// the distinction survives in the wrapped cause for logging.
func (s *AuthService) ResolveRole(ctx context.Context, userID string) (domainauth.Role, error) {
	if userID == "" {
		return domainauth.RoleNone, apperrors.Unauthenticated("user ID is required")
	}

	role, err := s.directory.RoleOf(ctx, userID)
	if err != nil {
		return domainauth.RoleNone, apperrors.Wrapf(err, apperrors.ErrCodeUnauthenticated,
			"resolve role for user %s", userID)
	}
	if !role.Valid() {
		return domainauth.RoleNone, apperrors.Unauthenticated(
			fmt.Sprintf("unknown role %q for user %s", role, userID))
	}
	return role, nil
}

// Logout removes a session and broadcasts the logout signal so every
// other tab holding the same user's identity tears itself down.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	// Read before delete so the broadcast can be scoped to the user.
	session, getErr := s.sessions.Get(ctx, sessionID)

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if s.bcast != nil && getErr == nil {
		if err := s.bcast.Publish(ctx, broadcast.NewSignal(session.UserID)); err != nil {
			return fmt.Errorf("broadcast logout: %w", err)
		}
	}
	return nil
}
