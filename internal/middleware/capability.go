package middleware

import (
	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantQueryParam is the query parameter list endpoints accept as a tenant
// filter.
const TenantQueryParam = "tenant_id"

// RequireCapability runs the authorization policy for a route. It expects the
// JWT middleware to have stored a principal. A tenant named by the request is
// attached to the context once allowed.
func RequireCapability(capability services.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := common.GetPrincipalFromContext(c.Request().Context())
			if !ok {
				return common.NewUnauthorizedError("")
			}

			requested, err := requestedTenant(c, capability)
			if err != nil {
				return err
			}

			d := services.Authorize(p, capability, requested)
			if !d.Allowed {
				logger.FromEcho(c).Debug("access denied",
					zap.String("capability", capability.Name),
					zap.String("user_id", p.ID.String()),
					zap.String("reason", d.Reason))
				return d.Err()
			}
			if requested != nil && !capability.SkipTenantCheck {
				ctx := common.WithTenantID(c.Request().Context(), *requested)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

func requestedTenant(c echo.Context, capability services.Capability) (*uuid.UUID, error) {
	if capability.TenantParam != "" {
		id, err := common.ValidateUUID(c.Param(capability.TenantParam), capability.TenantParam)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	return common.ParseOptionalUUID(c.QueryParam(TenantQueryParam), TenantQueryParam)
}
