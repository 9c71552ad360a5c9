package handlers

import (
	"net/http"

	"acta/internal/common"
	"acta/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles user management HTTP requests
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

func (h *UserHandlers) CreateUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	user, err := h.userService.Create(c.Request().Context(), p, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// ListUsers lists users of the caller's tenant, or of the tenant_id query
// parameter when the caller may see it.
func (h *UserHandlers) ListUsers(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	tenantID := scopedTenant(c)
	page, err := common.ParsePageRequest(c)
	if err != nil {
		return common.SendError(c, err)
	}

	users, err := h.userService.List(c.Request().Context(), p, tenantID, page)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandlers) GetUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	user, err := h.userService.Get(c.Request().Context(), p, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandlers) UpdateUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	user, err := h.userService.Update(c.Request().Context(), p, id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandlers) DeleteUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.userService.Delete(c.Request().Context(), p, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
