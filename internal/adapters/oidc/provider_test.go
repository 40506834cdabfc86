package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hissaria17/alcrm-sub001/internal/ports"
)

type discoveryDoc struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	var issuer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(discoveryDoc{
			Issuer:                issuer,
			AuthorizationEndpoint: "https://idp.example.com/auth",
			TokenEndpoint:         "https://idp.example.com/token",
			UserinfoEndpoint:      "https://idp.example.com/userinfo",
			JwksURI:               "https://idp.example.com/jwks",
		})
	}))
	issuer = server.URL
	t.Cleanup(server.Close)
	return server
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	server := newDiscoveryServer(t)
	provider, err := NewProvider(ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid email groups",
		DiscoveryURL: server.URL,
	})
	require.NoError(t, err)
	return provider
}

func TestNewProviderDiscovery(t *testing.T) {
	provider := newTestProvider(t)
	assert.Equal(t, "https://idp.example.com/auth", provider.config.Endpoint.AuthURL)
	assert.Equal(t, "https://idp.example.com/token", provider.config.Endpoint.TokenURL)
}

func TestNewProviderValidation(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name: "missing client ID",
			config: ProviderConfig{
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/callback",
				DiscoveryURL: "http://example.com",
			},
			errMsg: "client ID is required",
		},
		{
			name: "missing client secret",
			config: ProviderConfig{
				ClientID:     "client",
				RedirectURL:  "http://localhost/callback",
				DiscoveryURL: "http://example.com",
			},
			errMsg: "client secret is required",
		},
		{
			name: "missing redirect URL",
			config: ProviderConfig{
				ClientID:     "client",
				ClientSecret: "secret",
				DiscoveryURL: "http://example.com",
			},
			errMsg: "redirect URL is required",
		},
		{
			name: "missing discovery URL",
			config: ProviderConfig{
				ClientID:     "client",
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/callback",
			},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestBeginBuildsAuthURL(t *testing.T) {
	provider := newTestProvider(t)

	authURL, state, nonce, err := provider.Begin(context.Background())
	require.NoError(t, err)
	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/auth/callback", q.Get("redirect_uri"))
}

func TestBeginUniqueStateAndNonce(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	_, state1, nonce1, err := provider.Begin(ctx)
	require.NoError(t, err)
	_, state2, nonce2, err := provider.Begin(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, state1, state2)
	assert.NotEqual(t, nonce1, nonce2)
}

func TestExchangeValidation(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Exchange(ctx, ports.ExchangeInput{State: "s", Nonce: "n"})
	assert.ErrorContains(t, err, "authorization code is required")

	_, err = provider.Exchange(ctx, ports.ExchangeInput{Code: "c", Nonce: "n"})
	assert.ErrorContains(t, err, "state is required")

	_, err = provider.Exchange(ctx, ports.ExchangeInput{Code: "c", State: "s"})
	assert.ErrorContains(t, err, "nonce is required")
}

func TestRandomStringLength(t *testing.T) {
	for _, n := range []int{0, 1, 16, 32, 43} {
		s, err := randomString(n)
		require.NoError(t, err)
		assert.Len(t, s, n)
	}
}
