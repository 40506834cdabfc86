package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, RoleNone.Valid())
	assert.False(t, Role("SUPERADMIN").Valid())
	assert.False(t, Role("admin").Valid(), "role values are case-sensitive")
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"ADMIN", RoleAdmin, true},
		{"USER", RoleUser, true},
		{"", RoleNone, false},
		{"user", RoleNone, false},
		{"root", RoleNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
	}
}
