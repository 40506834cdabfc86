package access

// Package access computes allow/deny decisions and safe redirect targets
// from a role and a path. Everything in this package is pure: no I/O,
// no clock, no panics. Callers perform the actual navigation.

import (
	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
	"github.com/Hissaria17/alcrm-sub001/internal/domain/routes"
)

// Decision is the outcome of an access check. When Allowed is false,
// RedirectTo always carries a target that the same role is allowed to
// reach, so following a redirect can never loop.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Decider evaluates role/path combinations against a route table.
type Decider struct {
	table routes.Table
}

// NewDecider constructs a Decider over the given route table.
func NewDecider(table routes.Table) Decider {
	return Decider{table: table}
}

// Table returns the route table this decider evaluates against.
func (d Decider) Table() routes.Table {
	return d.table
}

// Decide returns the access decision for role on path.
//
// Public paths are allowed unconditionally. Unauthenticated actors are
// sent to signin for anything else. Role-gated categories redirect a
// mismatched authenticated role to its own landing page, never to the
// unauthorized page, since the actor always has a legitimate
// destination. Unclassified paths are denied but recoverable: the
// redirect lands on the role's home, not on another unknown page.
func (d Decider) Decide(role domainauth.Role, path string) Decision {
	category := d.table.Classify(path)

	if category == routes.CategoryPublic {
		return Decision{Allowed: true}
	}

	if !role.Valid() {
		return Decision{Allowed: false, RedirectTo: d.table.SigninPath}
	}

	switch category {
	case routes.CategoryAdminOnly:
		if role == domainauth.RoleAdmin {
			return Decision{Allowed: true}
		}
		return Decision{Allowed: false, RedirectTo: d.table.Landing(role)}
	case routes.CategoryUserOnly:
		if role == domainauth.RoleUser {
			return Decision{Allowed: true}
		}
		return Decision{Allowed: false, RedirectTo: d.table.Landing(role)}
	case routes.CategoryContextual:
		return Decision{Allowed: true}
	default:
		// Unknown path: fail closed, land somewhere the role can reach.
		return Decision{Allowed: false, RedirectTo: d.table.Landing(role)}
	}
}
