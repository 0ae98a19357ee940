package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/auth-service/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// subject means the route was mounted without the middleware.
func ctxClaims(c echo.Context) (email string, role domain.Role, err error) {
	email, _ = c.Get("email").(string)
	if email == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ = c.Get("role").(domain.Role)
	return email, role, nil
}
