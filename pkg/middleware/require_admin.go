package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/callforge/callforge/pkg/models"
)

// RequireAdmin ensures the authenticated user has the Admin role.
// Apply AFTER the JWT middleware, which puts the role claim in
// context.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("user_role").(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: "Authentication required",
				})
			}

			if role != models.RoleAdmin {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{
					Error:   "insufficient_permissions",
					Message: "Admin access required",
				})
			}

			return next(c)
		}
	}
}
