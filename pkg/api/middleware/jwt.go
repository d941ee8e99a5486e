package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/callforge/callforge/pkg/auth"
	"github.com/callforge/callforge/pkg/models"
)

// JWTMiddleware creates a JWT authentication middleware
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return JWTMiddlewareWithBlacklist(secret, nil, nil)
}

// JWTMiddlewareWithBlacklist creates a JWT authentication middleware with blacklist support
func JWTMiddlewareWithBlacklist(secret string, blacklist *auth.TokenBlacklist, db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "missing_token",
					Message: "Authorization header is required",
				})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token_format",
					Message: "Authorization header must be 'Bearer {token}'",
				})
			}

			return authenticate(c, next, parts[1], secret, blacklist, db)
		}
	}
}

// JWTFromQueryOrHeader creates a JWT middleware that accepts the token
// from a query parameter or header. Used for download links where
// headers cannot be easily set.
func JWTFromQueryOrHeader(secret string, blacklist *auth.TokenBlacklist, db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var token string

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					token = parts[1]
				}
			}
			if token == "" {
				token = c.QueryParam("token")
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "missing_token",
					Message: "Authorization header or token query parameter is required",
				})
			}

			return authenticate(c, next, token, secret, blacklist, db)
		}
	}
}

func authenticate(c echo.Context, next echo.HandlerFunc, token, secret string, blacklist *auth.TokenBlacklist, db *gorm.DB) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	claims, err := auth.ValidateJWTWithBlacklist(ctx, token, secret, blacklist)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_token",
			Message: err.Error(),
		})
	}

	// Reject tokens for accounts that no longer exist
	if db != nil {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", claims.UserID).
			Count(&count).Error; err != nil || count == 0 {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "user_not_found",
				Message: "User account not found",
			})
		}
	}

	// Store token in context for potential logout
	c.Set("token", token)

	c.Set("user_id", claims.UserID)
	c.Set("user_email", claims.Email)
	c.Set("user_role", claims.Role)

	return next(c)
}
