package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Hissaria17/alcrm-sub001/config"
	"github.com/Hissaria17/alcrm-sub001/internal/adapters/authroles"
	"github.com/Hissaria17/alcrm-sub001/internal/adapters/devauth"
	"github.com/Hissaria17/alcrm-sub001/internal/adapters/oidc"
	"github.com/Hissaria17/alcrm-sub001/internal/adapters/postgres"
	redisadapter "github.com/Hissaria17/alcrm-sub001/internal/adapters/redis"
	"github.com/Hissaria17/alcrm-sub001/internal/ports"
	"github.com/Hissaria17/alcrm-sub001/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	DB          *sql.DB
	Logger      *slog.Logger
}

// AuthStack is the auth service plus the logout channel it publishes on.
type AuthStack struct {
	Service *service.AuthService
	Logout  *redisadapter.LogoutChannel
}

// Close releases the logout channel subscription.
func (s *AuthStack) Close() error {
	if s == nil || s.Logout == nil {
		return nil
	}
	return s.Logout.Close()
}

// BuildAuthService assembles the auth service for the configured mode.
// Returns nil when auth cannot be configured; the caller decides
// whether that is fatal.
func BuildAuthService(ctx context.Context, cfg AuthConfig) *AuthStack {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RedisClient == nil {
		logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		return nil
	}

	sessionStore := redisadapter.NewSessionStore(cfg.RedisClient)
	roleMapper := authroles.StaticRoleMapper{
		AdminGroup: cfg.Auth.AdminGroup,
		UserGroup:  cfg.Auth.UserGroup,
	}

	var directory *postgres.UserDirectory
	if cfg.DB != nil {
		directory = postgres.NewUserDirectory(cfg.DB)
	} else {
		logger.Warn("auth service disabled: database not configured")
		return nil
	}

	logout, err := redisadapter.NewLogoutChannel(ctx, cfg.RedisClient, logger)
	if err != nil {
		logger.Warn("failed to open logout channel, auth disabled", "error", err)
		return nil
	}

	provider := buildProvider(cfg, logger)
	if provider == nil {
		_ = logout.Close()
		return nil
	}

	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider:    provider,
		Sessions:    sessionStore,
		Roles:       roleMapper,
		Directory:   directory,
		Provisioner: directory,
		Broadcast:   logout,
	})

	return &AuthStack{Service: svc, Logout: logout}
}

// buildProvider picks the auth provider for the configured mode.
//
//nolint:ireturn // the provider port is the useful type here.
func buildProvider(cfg AuthConfig, logger *slog.Logger) ports.AuthProvider {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID: cfg.Auth.DevAuth.UserID,
			Email:  cfg.Auth.DevAuth.Email,
			Groups: cfg.Auth.DevAuth.Groups,
		})
		if err != nil {
			logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
			return nil
		}
		return prov

	case config.AuthModeOAuth:
		oauth := cfg.Auth.OAuth
		if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
			logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
				"discovery_url_empty", oauth.DiscoveryURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
			return nil
		}
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
		})
		if err != nil {
			logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
			return nil
		}
		return prov

	default:
		return nil
	}
}
