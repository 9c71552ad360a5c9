package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is a position in the SUPER_ADMIN > ADMIN > USER order.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

var roleRank = map[Role]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// ParseRole accepts the stored lower-case form as well as the upper-case names.
func ParseRole(s string) (Role, error) {
	switch s {
	case "super_admin", "SUPER_ADMIN", "superadmin":
		return RoleSuperAdmin, nil
	case "admin", "ADMIN":
		return RoleAdmin, nil
	case "user", "USER":
		return RoleUser, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether r is at least as privileged as required.
func (r Role) Satisfies(required Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[required]
	if !ok {
		return false
	}
	return have >= want
}

func (r Role) String() string {
	return string(r)
}

// Principal is the authenticated actor of a request.
type Principal struct {
	ID       uuid.UUID  `json:"id"`
	Role     Role       `json:"role"`
	TenantID *uuid.UUID `json:"tenant_id,omitempty"`
	TokenID  string     `json:"-"`
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// IsPrivileged is true for roles allowed to pick a tenant explicitly.
func (p Principal) IsPrivileged() bool {
	return p.Role == RoleSuperAdmin || p.Role == RoleAdmin
}

func (p Principal) HasTenant() bool {
	return p.TenantID != nil && *p.TenantID != uuid.Nil
}
