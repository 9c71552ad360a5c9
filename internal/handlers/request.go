package handlers

import (
	"acta/internal/common"
	"acta/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// principal returns the caller set by the JWT middleware.
func principal(c echo.Context) (models.Principal, error) {
	p, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return models.Principal{}, common.NewUnauthorizedError("")
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator over it.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return common.NewValidationError("", "Invalid request format")
	}
	return c.Validate(req)
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param(name), name)
}

// scopedTenant returns the tenant attached by the capability guard, or nil
// when the request named none.
func scopedTenant(c echo.Context) *uuid.UUID {
	id, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return nil
	}
	return &id
}

type messageResponse struct {
	Message string `json:"message"`
}
