// Package httpx provides the HTTP surface of the application: routing,
// the request guard, and the auth endpoints.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/Hissaria17/alcrm-sub001/internal/broadcast"
	"github.com/Hissaria17/alcrm-sub001/internal/domain/access"
)

// RouterServices holds the services needed by the HTTP router.
type RouterServices struct {
	Auth         AuthServiceInterface
	Decider      access.Decider
	Broadcast    broadcast.Subscriber
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter builds the full handler chain: recovery and logging on the
// outside, the request guard in front of every page route, and the auth
// endpoints (which the guard passes through) handling their own checks.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Decider:      services.Decider,
		CookieDomain: services.CookieDomain,
		Logger:       logger,
	}
	mux.HandleFunc("GET /auth/login", authHandlers.Login)
	mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/status", authHandlers.Status)

	if services.Broadcast != nil {
		eventHandlers := &EventHandlers{
			Svc:    services.Auth,
			Bcast:  services.Broadcast,
			Logger: logger,
		}
		mux.HandleFunc("GET /auth/events", eventHandlers.Events)
	}

	registerPageRoutes(mux, &PageHandlers{Decider: services.Decider})

	guard := RequestGuard(GuardOptions{
		Auth:    services.Auth,
		Decider: services.Decider,
		Logger:  logger,
	})

	var handler http.Handler = guard(mux)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /about", h.About)
	mux.HandleFunc("GET /signin", h.Signin)
	mux.HandleFunc("GET /signup", h.Signup)
	mux.HandleFunc("GET /unauthorized", h.Unauthorized)

	mux.HandleFunc("GET /jobs", h.Jobs)
	mux.HandleFunc("GET /jobs/{id}", h.JobDetail)

	mux.HandleFunc("GET /dashboard", h.Dashboard)
	mux.HandleFunc("GET /dashboard/{rest...}", h.Dashboard)

	mux.HandleFunc("GET /admin", h.AdminDashboard)
	mux.HandleFunc("GET /admin/{rest...}", h.AdminDashboard)

	mux.HandleFunc("GET /applications", h.Applications)
	mux.HandleFunc("GET /applications/{rest...}", h.Applications)

	mux.HandleFunc("GET /account", h.Account)
	mux.HandleFunc("GET /account/{rest...}", h.Account)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		return
	}
}
