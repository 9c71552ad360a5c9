package handlers

import (
	"net/http"

	"acta/internal/common"
	"acta/internal/middleware"
	"acta/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Login exchanges email and password for an access token.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	resp, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Register creates a user on behalf of an admin.
func (h *AuthHandlers) Register(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	user, err := h.authService.Register(c.Request().Context(), p, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Logout revokes the token the request was made with.
func (h *AuthHandlers) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.authService.Logout(c.Request().Context(), p, claims); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Me returns the profile of the authenticated user.
func (h *AuthHandlers) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}

	user, err := h.authService.Me(c.Request().Context(), p)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
