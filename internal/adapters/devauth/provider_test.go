package devauth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hissaria17/alcrm-sub001/internal/ports"
)

func TestNewProviderValidation(t *testing.T) {
	_, err := NewProvider(Config{Email: "dev@example.com"})
	assert.ErrorContains(t, err, "UserID is required")

	_, err = NewProvider(Config{UserID: "dev-1"})
	assert.ErrorContains(t, err, "Email is required")
}

func TestBeginReturnsLocalCallback(t *testing.T) {
	p, err := NewProvider(Config{UserID: "dev-1", Email: "dev@example.com"})
	require.NoError(t, err)

	authURL, state, nonce, err := p.Begin(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(authURL, "/auth/callback?code=dev&state="))
	assert.Contains(t, authURL, state)
	assert.Len(t, state, 24)
	assert.Len(t, nonce, 24)
}

func TestExchangeReturnsConfiguredIdentity(t *testing.T) {
	p, err := NewProvider(Config{
		UserID: "dev-1",
		Email:  "dev@example.com",
		Groups: []string{"alcrm-admins"},
	})
	require.NoError(t, err)

	identity, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "dev-1", identity.UserID)
	assert.Equal(t, "dev@example.com", identity.Email)
	assert.Equal(t, []string{"alcrm-admins"}, identity.Groups)
	assert.True(t, identity.ExpiresAt.After(time.Now()))
}

func TestExchangeRefreshesNearExpiry(t *testing.T) {
	p, err := NewProvider(Config{
		UserID:          "dev-1",
		Email:           "dev@example.com",
		SessionDuration: time.Hour,
	})
	require.NoError(t, err)

	p.identity.ExpiresAt = time.Now().Add(time.Minute)
	identity, err := p.Exchange(context.Background(), ports.ExchangeInput{})
	require.NoError(t, err)
	assert.True(t, identity.ExpiresAt.After(time.Now().Add(30*time.Minute)))
}
