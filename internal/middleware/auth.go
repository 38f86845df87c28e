package middleware

import (
	"gemlab-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAdmin ensures an authenticated admin is in the session. Every
// mutating certificate route and the listing view sit behind this gate;
// only verification is public.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", user)
		return c.Next()
	}
}

// GetAdmin returns the session admin from Locals (nil if not logged in).
func GetAdmin(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}
