package handlers

import (
	"net/http"

	"acta/internal/common"
	"acta/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers handles tenant-related HTTP requests
type TenantHandlers struct {
	tenantService services.TenantService
}

func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

// CurrentTenant returns the caller's tenant. Super admins get the first
// tenant, created on demand.
func (h *TenantHandlers) CurrentTenant(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}

	tenant, err := h.tenantService.Current(c.Request().Context(), p)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandlers) ListTenants(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	page, err := common.ParsePageRequest(c)
	if err != nil {
		return common.SendError(c, err)
	}

	tenants, err := h.tenantService.List(c.Request().Context(), p, page)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, tenants)
}

func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.CreateTenantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	tenant, err := h.tenantService.Create(c.Request().Context(), p, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, tenant)
}

func (h *TenantHandlers) GetTenant(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	tenant, err := h.tenantService.Get(c.Request().Context(), p, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.UpdateTenantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	tenant, err := h.tenantService.Update(c.Request().Context(), p, id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// DeleteTenant fails with a conflict while users still belong to the tenant.
func (h *TenantHandlers) DeleteTenant(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.tenantService.Delete(c.Request().Context(), p, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
