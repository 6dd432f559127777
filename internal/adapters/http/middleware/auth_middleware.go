package middleware

import (
	"strings"

	"rtd-driverpass/internal/core/domain"
	"rtd-driverpass/internal/core/services"
	"rtd-driverpass/internal/pkg/jwt"
	"rtd-driverpass/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware. Beyond signature and
// expiry, the embedded id must still resolve to a live account; a deleted
// actor's token is dead even inside its validity window.
func AuthMiddleware(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := authService.ValidateAccessToken(accessToken)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Resolve to a live account
		user, err := authService.GetUserByID(c.Context(), claims.UserID)
		if err != nil {
			return response.Unauthorized(c, "Account no longer exists")
		}

		// 6. Set user info in context
		c.Locals("userID", user.ID)
		c.Locals("username", user.Username)
		c.Locals("role", user.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == string(allowedRole) {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// DriverOnly middleware allows only the driver role
func DriverOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleDriver)
}

// StationOnly middleware allows only the station role
func StationOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleStation)
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// OfficerOrAdmin middleware allows officer or admin roles
func OfficerOrAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleOfficer, domain.RoleAdmin)
}

// CurrentUserID returns the authenticated user's id from locals
func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// CurrentUsername returns the authenticated user's handle from locals
func CurrentUsername(c *fiber.Ctx) string {
	username, _ := c.Locals("username").(string)
	return username
}
