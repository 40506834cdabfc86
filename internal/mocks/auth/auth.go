package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
	apperrors "github.com/Hissaria17/alcrm-sub001/internal/errors"
	"github.com/Hissaria17/alcrm-sub001/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider    = (*MockAuthProvider)(nil)
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.RoleMapper      = (*StaticRoleMapper)(nil)
	_ ports.UserDirectory   = (*MemoryUserDirectory)(nil)
	_ ports.UserProvisioner = (*MemoryUserDirectory)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (ports.ProviderIdentity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	DefaultUser ports.ProviderIdentity

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: ports.ProviderIdentity{
			UserID:    "mock-user-1",
			Email:     "mock.user@example.com",
			Groups:    []string{"users"},
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	state := fmt.Sprintf("state-%d", m.callCount)
	nonce := fmt.Sprintf("nonce-%d", m.callCount)
	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.ProviderIdentity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	user := m.DefaultUser
	if user.UserID == "" {
		user = ports.ProviderIdentity{
			UserID: "mock-user-1",
			Email:  "mock.user@example.com",
			Groups: []string{"users"},
		}
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleNone
}

// MemoryUserDirectory is an in-memory role directory for unit tests.
// Unknown users report not-found; Err forces a store failure.
type MemoryUserDirectory struct {
	mu    sync.Mutex
	roles map[string]domainauth.Role
	Err   error
}

// NewMemoryUserDirectory creates a directory seeded with the given roles.
func NewMemoryUserDirectory(roles map[string]domainauth.Role) *MemoryUserDirectory {
	if roles == nil {
		roles = make(map[string]domainauth.Role)
	}
	return &MemoryUserDirectory{roles: roles}
}

// SetRole assigns a role to a user.
func (m *MemoryUserDirectory) SetRole(userID string, role domainauth.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
}

func (m *MemoryUserDirectory) RoleOf(_ context.Context, userID string) (domainauth.Role, error) {
	if m.Err != nil {
		return domainauth.RoleNone, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[userID]
	if !ok {
		return domainauth.RoleNone, apperrors.NotFoundf("user %s not found", userID)
	}
	return role, nil
}

// Provision records the user, keeping an existing role untouched.
func (m *MemoryUserDirectory) Provision(_ context.Context, userID, _ string, role domainauth.Role) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[userID]; !ok {
		m.roles[userID] = role
	}
	return nil
}
