package middleware

import (
	"strings"

	"bastion/internal/services/auth"
	"bastion/internal/utils"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// APIKeyAuth guards public endpoints with the X-API-Key header.
func APIKeyAuth(authSvc auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-API-Key")
		if err := authSvc.VerifyAPIKey(key); err != nil {
			return response.Unauthorized(c, "Invalid or missing API key")
		}
		return c.Next()
	}
}

// AdminAuth guards the admin API. A Bearer token issued at login is
// preferred; a valid X-API-Key is accepted for service callers.
func AdminAuth(authSvc auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			claims, err := utils.ParseAdminToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return response.Unauthorized(c, "Invalid or expired token")
			}
			c.Locals("admin_id", claims.AdminID)
			c.Locals("admin_email", claims.Email)
			return c.Next()
		}

		if err := authSvc.VerifyAPIKey(c.Get("X-API-Key")); err != nil {
			return response.Unauthorized(c, "Missing credentials")
		}
		return c.Next()
	}
}
