package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Hissaria17/alcrm-sub001/config"
	"github.com/Hissaria17/alcrm-sub001/internal/domain/access"
	"github.com/Hissaria17/alcrm-sub001/internal/domain/routes"
	httpx "github.com/Hissaria17/alcrm-sub001/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config *config.AppConfig
	Auth   *AuthStack
	Logger *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server. The returned
// server is used for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Decider:      access.NewDecider(routes.Default()),
		CookieDomain: appCfg.HTTP.CookieDomain,
		Logger:       logger,
	}
	if cfg.Auth != nil {
		services.Auth = cfg.Auth.Service
		services.Broadcast = cfg.Auth.Logout
	}

	handler := httpx.NewRouter(services)

	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE connections must outlive a write deadline
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Auth    *AuthStack
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server and closes
// the logout channel.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(cfg.Context, timeout)
	defer cancel()

	// Long-lived SSE connections keep Shutdown waiting; force-close
	// anything still open once the timeout expires.
	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		if closeErr := cfg.Server.Close(); closeErr != nil {
			return closeErr
		}
		return err
	}

	if cfg.Auth != nil {
		if err := cfg.Auth.Close(); err != nil && cfg.Logger != nil {
			cfg.Logger.Warn("close logout channel", "error", err)
		}
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}
	return nil
}
