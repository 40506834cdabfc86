package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Hissaria17/alcrm-sub001/internal/broadcast"
	"github.com/Hissaria17/alcrm-sub001/internal/domain/access"
	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
	"github.com/Hissaria17/alcrm-sub001/internal/domain/routes"
	mockauth "github.com/Hissaria17/alcrm-sub001/internal/mocks/auth"
	"github.com/Hissaria17/alcrm-sub001/internal/service"
)

type testEnv struct {
	handler   http.Handler
	svc       *service.AuthService
	sessions  *mockauth.MemorySessionStore
	directory *mockauth.MemoryUserDirectory
	bcast     *broadcast.LocalBroadcaster
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sessions := mockauth.NewMemorySessionStore()
	directory := mockauth.NewMemoryUserDirectory(map[string]domainauth.Role{
		"admin-1": domainauth.RoleAdmin,
		"user-1":  domainauth.RoleUser,
	})
	bcast := broadcast.NewLocalBroadcaster()

	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider:    mockauth.NewMockAuthProvider(),
		Sessions:    sessions,
		Roles:       mockauth.StaticRoleMapper{AdminGroup: "admins", UserGroup: "users"},
		Directory:   directory,
		Provisioner: directory,
		Broadcast:   bcast,
	})

	handler := NewRouter(RouterServices{
		Auth:      svc,
		Decider:   access.NewDecider(routes.Default()),
		Broadcast: bcast,
		Logger:    slog.New(slog.DiscardHandler),
	})

	return &testEnv{
		handler:   handler,
		svc:       svc,
		sessions:  sessions,
		directory: directory,
		bcast:     bcast,
	}
}

// newSession stores a session for userID and returns its cookie.
func (e *testEnv) newSession(t *testing.T, userID string, role domainauth.Role) *http.Cookie {
	t.Helper()
	sess := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     userID + "@example.com",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, e.sessions.Save(context.Background(), sess))
	return &http.Cookie{Name: "session_id", Value: sess.ID}
}
