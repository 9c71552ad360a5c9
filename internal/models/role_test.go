package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleSatisfies(t *testing.T) {
	tests := []struct {
		have, want Role
		ok         bool
	}{
		{RoleSuperAdmin, RoleAdmin, true},
		{RoleSuperAdmin, RoleUser, true},
		{RoleAdmin, RoleUser, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleUser, RoleAdmin, false},
		{RoleAdmin, RoleSuperAdmin, false},
		{Role("guest"), RoleUser, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.have)+"_"+string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.have.Satisfies(tt.want))
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("SUPER_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleSuperAdmin, r)

	_, err = ParseRole("owner")
	assert.Error(t, err)
}

func TestPrincipalHasTenant(t *testing.T) {
	nilID := uuid.Nil
	id := uuid.New()

	assert.False(t, Principal{}.HasTenant())
	assert.False(t, Principal{TenantID: &nilID}.HasTenant())
	assert.True(t, Principal{TenantID: &id}.HasTenant())
}
