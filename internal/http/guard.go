package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Hissaria17/alcrm-sub001/internal/domain/access"
	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
)

// GuardOptions configures the request guard middleware.
type GuardOptions struct {
	Auth    AuthServiceInterface
	Decider access.Decider
	Logger  *slog.Logger
	// SkipPrefixes lists path prefixes the guard passes through
	// untouched (auth endpoints, health checks, static assets).
	SkipPrefixes []string
}

// RequestGuard enforces access control on every page request. It is the
// authoritative check: the client-side navigation guard is advisory
// only, and anything the guard cannot positively allow is denied.
//
// For unauthenticated requests to a protected path the guard redirects
// to the sign-in page carrying the original URL in the return
// parameter. For authenticated requests the role is re-resolved from
// the user directory on every request, so role changes and revocations
// take effect immediately; a resolution failure demotes the request to
// unauthenticated rather than trusting the session's role snapshot.
func RequestGuard(opts GuardOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	skip := opts.SkipPrefixes
	if skip == nil {
		skip = []string{"/auth/", "/healthz", "/static/"}
	}
	table := opts.Decider.Table()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			for _, p := range skip {
				if strings.HasPrefix(path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			session := sessionFromRequest(r, opts.Auth)
			if session == nil {
				if opts.Decider.Decide(domainauth.RoleNone, path).Allowed {
					next.ServeHTTP(w, r)
					return
				}
				redirectToSignin(w, r, table.SigninPath, table.ReturnURLParam)
				return
			}

			role, err := opts.Auth.ResolveRole(r.Context(), session.UserID)
			if err != nil {
				// Role no longer resolvable: the session is dead weight.
				logger.WarnContext(r.Context(), "role resolution failed",
					"user_id", session.UserID, "error", err)
				clearCookie(w, r, "session_id", "")
				if opts.Decider.Decide(domainauth.RoleNone, path).Allowed {
					next.ServeHTTP(w, r)
					return
				}
				redirectToSignin(w, r, table.SigninPath, table.ReturnURLParam)
				return
			}

			// Authenticated users have no business on the auth pages.
			if table.IsAuthPage(path) {
				http.Redirect(w, r, table.Landing(role), http.StatusSeeOther)
				return
			}

			decision := opts.Decider.Decide(role, path)
			if !decision.Allowed {
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
				return
			}

			ctx := SetSessionInContext(r.Context(), session)
			ctx = SetRoleInContext(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFromRequest retrieves and validates the session cookie. Any
// failure yields nil so callers treat the request as unauthenticated.
func sessionFromRequest(r *http.Request, authSvc AuthServiceInterface) *domainauth.Session {
	sessionCookie, err := r.Cookie("session_id")
	if err != nil {
		return nil
	}
	session, err := authSvc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		return nil
	}
	return session
}

// redirectToSignin sends the browser to the sign-in page, carrying the
// originally requested URL so login can return there. The sign-in and
// sign-up pages themselves never become a return target.
func redirectToSignin(w http.ResponseWriter, r *http.Request, signinPath, param string) {
	target := signinPath
	if uri := r.URL.RequestURI(); uri != "" && uri != signinPath {
		q := url.Values{}
		q.Set(param, uri)
		target = signinPath + "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
