package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopfloor/api/pkg/response"
)

// GatewayAuthMiddleware reads user identity from X-User-* headers
// set by an upstream ForwardAuth proxy and populates Fiber context locals.
func GatewayAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-Id")
		if userID == "" {
			return response.Unauthorized(c, "Missing user identity headers")
		}

		role := model.Role(c.Get("X-User-Role"))
		if role != "" && !role.Valid() {
			return response.Unauthorized(c, "Unknown user role")
		}

		setIdentity(c, userID, c.Get("X-User-Name"), role)
		return c.Next()
	}
}
