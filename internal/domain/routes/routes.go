package routes

// Package routes classifies request paths into access categories and
// holds the single path table shared by every guard layer. Keeping the
// table in one structure guarantees the server-side request guard and
// the client-side navigation guard can never classify the same path
// differently.

import (
	"strings"

	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
)

// Category is the access class of a path, independent of role.
type Category string

const (
	// CategoryPublic paths are reachable by anyone, authenticated or not.
	CategoryPublic Category = "public"
	// CategoryAdminOnly paths require the ADMIN role.
	CategoryAdminOnly Category = "admin_only"
	// CategoryUserOnly paths require the USER role.
	CategoryUserOnly Category = "user_only"
	// CategoryContextual paths are reachable by any authenticated role;
	// content varies by consumer, not by the guard.
	CategoryContextual Category = "contextual"
	// CategoryUnknown marks a path that matched no table entry.
	// Unknown paths are denied (fail closed).
	CategoryUnknown Category = "unknown"
)

// Table is the route configuration consumed by the classifier and both
// guard layers.
type Table struct {
	// PublicExact holds paths that are public only on exact match.
	PublicExact []string
	// PublicPrefixes holds prefixes of public viewing areas.
	PublicPrefixes []string
	AdminPrefixes  []string
	UserPrefixes   []string
	// ContextualPrefixes holds prefixes shared by both authenticated roles.
	ContextualPrefixes []string

	// DefaultLanding maps each role to its unconditional landing path.
	DefaultLanding map[domainauth.Role]string

	SigninPath       string
	SignupPath       string
	UnauthorizedPath string

	// ReturnURLParam is the query parameter carrying the pre-auth
	// destination through the signin redirect.
	ReturnURLParam string
}

// Default returns the application's route table.
func Default() Table {
	return Table{
		PublicExact:        []string{"/", "/about", "/signin", "/signup", "/unauthorized"},
		PublicPrefixes:     []string{"/jobs"},
		AdminPrefixes:      []string{"/admin"},
		UserPrefixes:       []string{"/dashboard"},
		ContextualPrefixes: []string{"/applications", "/account"},
		DefaultLanding: map[domainauth.Role]string{
			domainauth.RoleAdmin: "/admin/dashboard",
			domainauth.RoleUser:  "/dashboard",
		},
		SigninPath:       "/signin",
		SignupPath:       "/signup",
		UnauthorizedPath: "/unauthorized",
		ReturnURLParam:   "returnUrl",
	}
}

// Landing returns the default landing path for a role. Unauthenticated
// or unknown roles land on the signin page.
func (t Table) Landing(role domainauth.Role) string {
	if p, ok := t.DefaultLanding[role]; ok && role.Valid() {
		return p
	}
	return t.SigninPath
}

// IsAuthPage reports whether path is the signin or signup page.
func (t Table) IsAuthPage(path string) bool {
	p := normalize(path)
	return p == t.SigninPath || p == t.SignupPath
}

// Classify maps a path to its Category. It is pure and total over all
// string inputs: empty strings, malformed paths, and trailing slashes
// never panic, and a trailing slash does not change the result.
// Precedence: public exact, public prefixes, admin, user, contextual.
func (t Table) Classify(path string) Category {
	p := normalize(path)
	if !strings.HasPrefix(p, "/") {
		// Not a rooted path: empty strings, schemes, relative junk.
		return CategoryUnknown
	}

	for _, exact := range t.PublicExact {
		if p == exact {
			return CategoryPublic
		}
	}
	if matchesAny(p, t.PublicPrefixes) {
		return CategoryPublic
	}
	if matchesAny(p, t.AdminPrefixes) {
		return CategoryAdminOnly
	}
	if matchesAny(p, t.UserPrefixes) {
		return CategoryUserOnly
	}
	if matchesAny(p, t.ContextualPrefixes) {
		return CategoryContextual
	}
	return CategoryUnknown
}

// normalize strips trailing slashes (keeping the bare root) and the
// query/fragment remnants that can leak into a raw path string.
func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// matchesAny reports whether p equals a prefix or extends it at a path
// segment boundary. "/jobs" matches "/jobs" and "/jobs/42" but not
// "/jobsearch".
func matchesAny(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if p == prefix {
			return true
		}
		if strings.HasPrefix(p, prefix) && len(p) > len(prefix) && p[len(prefix)] == '/' {
			return true
		}
	}
	return false
}
