package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hissaria17/alcrm-sub001/internal/domain/access"
	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
	"github.com/Hissaria17/alcrm-sub001/internal/service"
)

// AuthServiceInterface defines the auth service operations the HTTP
// layer depends on.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	ResolveRole(ctx context.Context, userID string) (domainauth.Role, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Decider      access.Decider
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login initiates the auth flow.
// GET /auth/login?returnUrl=<optional_target>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	table := h.Decider.Table()

	returnURL := r.URL.Query().Get(table.ReturnURLParam)
	returnURL = safeRedirectPath(returnURL)

	result, err := h.Svc.BeginLogin(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     err,
		})
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{
		State:     result.State,
		Nonce:     result.Nonce,
		ReturnURL: returnURL,
	})

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the auth flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Err:     err,
		})
		return
	}

	h.setSessionCookie(w, r, result.Session)
	clearCookie(w, r, "oauth_state", h.CookieDomain)
	clearCookie(w, r, "oauth_nonce", h.CookieDomain)

	// The directory's role claim wins over the snapshot mapped at login.
	role := result.Session.Role
	if resolved, roleErr := h.Svc.ResolveRole(r.Context(), result.Session.UserID); roleErr == nil {
		role = resolved
	} else {
		h.logger().WarnContext(r.Context(), "post-login role resolution failed",
			"user_id", result.Session.UserID, "error", roleErr)
	}

	returnURL := h.takeReturnURL(w, r)
	http.Redirect(w, r, h.Decider.ResolveLanding(role, returnURL), http.StatusSeeOther)
}

// Logout invalidates the session and broadcasts the logout signal.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie("session_id"); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	clearCookie(w, r, "session_id", h.CookieDomain)

	signinPath := h.Decider.Table().SigninPath

	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": signinPath,
		})
		return
	}

	http.Redirect(w, r, signinPath, http.StatusSeeOther)
}

// Status reports the current authentication state.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie("session_id")
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		clearCookie(w, r, "session_id", h.CookieDomain)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	role, err := h.Svc.ResolveRole(r.Context(), session.UserID)
	if err != nil {
		clearCookie(w, r, "session_id", h.CookieDomain)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":    session.UserID,
			"email": session.Email,
			"role":  role,
		},
		"expires_at": session.ExpiresAt,
	})
}

// clearCookie expires a cookie immediately, mirroring the attributes
// used when setting it so deletion works across browsers.
func clearCookie(w http.ResponseWriter, r *http.Request, name, domain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// oauthCookieParams groups values stored across the auth round trip.
type oauthCookieParams struct {
	State     string
	Nonce     string
	ReturnURL string
}

// setOAuthCookies stores state, nonce, and the post-login return URL.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := isSecureRequest(r)
	for name, value := range map[string]string{
		"oauth_state":       p.State,
		"oauth_nonce":       p.Nonce,
		"post_login_return": p.ReturnURL,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600, // 10 minutes
		})
	}
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// takeReturnURL reads and clears the post-login return cookie.
func (h *AuthHandlers) takeReturnURL(w http.ResponseWriter, r *http.Request) string {
	returnURL := ""
	if c, err := r.Cookie("post_login_return"); err == nil {
		returnURL = c.Value
		clearCookie(w, r, "post_login_return", h.CookieDomain)
	}
	return returnURL
}

// safeRedirectPath allows only same-origin relative paths starting with
// "/". Anything else collapses to empty so the landing resolver picks
// the role default.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return ""
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return candidate
}
