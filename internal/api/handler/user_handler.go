package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/auth-service/internal/core/domain"
	"github.com/fleetops/auth-service/internal/core/ports"
)

// UserHandler serves profile lookups for authenticated callers.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /api/users/me.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	email, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	profile, err := h.service.Profile(c.Request().Context(), email)
	if err != nil {
		// A valid token for an account that no longer exists.
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Lookup handles GET /api/admin/users/:email.
//
// @Summary      Look up a user profile
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "User email"
// @Success      200    {object}  domain.UserProfile
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Failure      500    {object}  errorResponse
// @Router       /api/admin/users/{email} [get]
func (h *UserHandler) Lookup(c echo.Context) error {
	// Echo hands path parameters over still percent-encoded.
	email, err := url.PathUnescape(c.Param("email"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed email")
	}
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	profile, err := h.service.Profile(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
