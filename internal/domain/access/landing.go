package access

import (
	"strings"

	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
	"github.com/Hissaria17/alcrm-sub001/internal/domain/routes"
)

// ResolveLanding computes the post-authentication landing path for role,
// honoring returnURL only when it is safe to do so.
//
// returnURL is untrusted input carried through the signin redirect. It
// is ignored outright when empty, scheme-prefixed ("http..."), or
// scheme-relative ("//host"), the two classic open-redirect vectors,
// and when it points at an auth page, which would bounce a freshly
// signed-in user straight back to the form. A surviving candidate is
// honored only if the role is allowed to reach it: ADMIN takes
// admin-only or public targets, USER takes user-only, contextual, or
// public targets. Anything else falls back to the role's default
// landing page.
//
// The function is idempotent: resolving its own output is a fixed point.
func (d Decider) ResolveLanding(role domainauth.Role, returnURL string) string {
	fallback := d.table.Landing(role)

	if returnURL == "" ||
		strings.HasPrefix(returnURL, "http") ||
		strings.HasPrefix(returnURL, "//") ||
		d.table.IsAuthPage(returnURL) {
		return fallback
	}

	switch d.table.Classify(returnURL) {
	case routes.CategoryPublic:
		return returnURL
	case routes.CategoryAdminOnly:
		if role == domainauth.RoleAdmin {
			return returnURL
		}
	case routes.CategoryUserOnly, routes.CategoryContextual:
		if role == domainauth.RoleUser {
			return returnURL
		}
	}
	return fallback
}
