package services

import (
	"acta/internal/common"
	"acta/internal/models"

	"github.com/google/uuid"
)

// Capability declares what an operation requires. It is built at route
// registration and handed to Authorize as is.
type Capability struct {
	Name string
	// Roles lists the accepted roles; empty means any authenticated principal.
	Roles []models.Role
	// SkipTenantCheck is set on authentication routes.
	SkipTenantCheck bool
	// TenantParam names the path parameter holding a tenant id, if any.
	TenantParam string
}

func Require(name string, roles ...models.Role) Capability {
	return Capability{Name: name, Roles: roles}
}

// AuthRoute marks the capability as an authentication route.
func (c Capability) AuthRoute() Capability {
	c.SkipTenantCheck = true
	return c
}

// WithTenantParam reads the requested tenant from the named path parameter.
func (c Capability) WithTenantParam(param string) Capability {
	c.TenantParam = param
	return c
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allowed: false, Reason: reason} }

// Err converts a denial into a forbidden error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return common.NewForbiddenError("access denied: " + d.Reason)
}

// Authorize evaluates the role check and then the tenant check. The rules are
// ordered; the first matching rule decides each check.
func Authorize(p models.Principal, capability Capability, requestedTenantID *uuid.UUID) Decision {
	if p.IsSuperAdmin() {
		return allow("super admin")
	}

	if d := checkRole(p, capability.Roles); !d.Allowed {
		return d
	}

	if capability.SkipTenantCheck {
		return allow("authentication route")
	}
	return checkTenant(p, requestedTenantID)
}

func checkRole(p models.Principal, required []models.Role) Decision {
	if len(required) == 0 {
		return allow("no roles required")
	}
	for _, r := range required {
		// ADMIN stands in for USER, never the reverse.
		if p.Role.Satisfies(r) {
			return allow("role " + string(p.Role) + " satisfies " + string(r))
		}
	}
	return deny("role " + string(p.Role) + " not permitted")
}

func checkTenant(p models.Principal, requestedTenantID *uuid.UUID) Decision {
	if !p.HasTenant() {
		return deny("principal has no tenant")
	}
	if requestedTenantID == nil || *requestedTenantID == uuid.Nil {
		return allow("self-scoped")
	}
	if *requestedTenantID != *p.TenantID {
		return deny("tenant mismatch")
	}
	return allow("same tenant")
}

// ResolveTenant picks the tenant a create or update payload applies to. Only
// ADMIN and SUPER_ADMIN may name a tenant in the body, and the choice is still
// subject to the tenant check.
func ResolveTenant(p models.Principal, bodyTenantID *uuid.UUID) (uuid.UUID, error) {
	if bodyTenantID != nil && *bodyTenantID != uuid.Nil && p.IsPrivileged() {
		if d := Authorize(p, Capability{}, bodyTenantID); !d.Allowed {
			return uuid.Nil, d.Err()
		}
		return *bodyTenantID, nil
	}
	if p.HasTenant() {
		return *p.TenantID, nil
	}
	return uuid.Nil, common.NewValidationError("tenant_id", "tenant required")
}

// TenantFilter returns the tenant a read query is restricted to; nil means
// unrestricted and is only produced for SUPER_ADMIN.
func TenantFilter(p models.Principal, requestedTenantID *uuid.UUID) *uuid.UUID {
	if requestedTenantID != nil && *requestedTenantID != uuid.Nil {
		return requestedTenantID
	}
	if p.IsSuperAdmin() {
		return nil
	}
	return p.TenantID
}

// CanAccessTenant reports whether a loaded resource of tenantID is visible.
func CanAccessTenant(p models.Principal, tenantID uuid.UUID) bool {
	if p.IsSuperAdmin() {
		return true
	}
	return p.HasTenant() && *p.TenantID == tenantID
}
