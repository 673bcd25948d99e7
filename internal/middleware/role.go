package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopfloor/api/pkg/response"
)

// Role groups used by the routes.
var (
	Planners   = []model.Role{model.RoleAdmin, model.RolePlanner}
	Quality    = []model.Role{model.RoleAdmin, model.RolePlanner, model.RoleQuality}
	Production = []model.Role{model.RoleAdmin, model.RolePlanner, model.RoleOperator}
)

// RequireRole rejects callers whose role is not in roles.
func RequireRole(roles ...model.Role) fiber.Handler {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		if !allowed[GetRole(c)] {
			return response.Forbidden(c, "Insufficient role for this action")
		}
		return c.Next()
	}
}
