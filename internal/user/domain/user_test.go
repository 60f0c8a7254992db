package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUser_HasRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		role     string
		expected bool
	}{
		{
			name:     "rol presente",
			roles:    []string{RoleUser, RoleAdmin},
			role:     RoleAdmin,
			expected: true,
		},
		{
			name:     "rol ausente",
			roles:    []string{RoleUser},
			role:     RoleAdmin,
			expected: false,
		},
		{
			name:     "sin roles",
			roles:    nil,
			role:     RoleUser,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Username: "test", Roles: tt.roles}
			assert.Equal(t, tt.expected, user.HasRole(tt.role))
		})
	}
}

func TestUser_IsAdmin(t *testing.T) {
	admin := &User{Roles: []string{RoleUser, RoleAdmin}}
	assert.True(t, admin.IsAdmin())

	plain := &User{Roles: []string{RoleUser}}
	assert.False(t, plain.IsAdmin())
}

func TestCacheKeyByID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "user:id:"+id.String(), CacheKeyByID(id))
}
