package authroles

import (
	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
)

// StaticRoleMapper maps IdP groups to roles by exact group membership.
// Admin membership wins over user membership; anything else maps to no
// role, which downstream checks treat as unauthenticated.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleNone
}
