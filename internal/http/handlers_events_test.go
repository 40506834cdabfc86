package httpx

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hissaria17/alcrm-sub001/internal/broadcast"
	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
)

func TestEventsRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	rec := get(t, env, "/auth/events")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventsStreamsLogoutSignal(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.newSession(t, "user-1", domainauth.RoleUser)

	server := httptest.NewServer(env.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/auth/events", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Headers are only sent after the handler subscribes, so the
	// signal cannot be missed.
	_ = env.bcast.Publish(context.Background(), broadcast.NewSignal("user-1"))

	scanner := bufio.NewScanner(resp.Body)
	var sawLogout bool
	for scanner.Scan() {
		line := scanner.Text()
		if line == "event: logout" {
			sawLogout = true
		}
		if sawLogout && strings.HasPrefix(line, "data: ") {
			assert.Contains(t, line, `"user_id":"user-1"`)
			return
		}
	}
	t.Fatal("stream ended without a logout event")
}


func TestEventsIgnoresOtherUsersSignals(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.newSession(t, "user-1", domainauth.RoleUser)

	server := httptest.NewServer(env.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/auth/events", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	_ = env.bcast.Publish(context.Background(), broadcast.NewSignal("someone-else"))
	_ = env.bcast.Publish(context.Background(), broadcast.NewSignal("user-1"))

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			// The first delivered event must be ours, never someone else's.
			assert.Contains(t, line, `"user_id":"user-1"`)
			return
		}
	}
	t.Fatal("stream ended without an event")
}
