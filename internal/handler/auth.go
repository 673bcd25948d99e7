package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopfloor/api/internal/middleware"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopfloor/api/internal/service"
	"github.com/shopfloor/api/pkg/response"
)

// AuthHandler issues tokens for known users.
type AuthHandler struct {
	users     *service.UserService
	auth      *middleware.AuthMiddleware
	validator *validator.Validate
}

func NewAuthHandler(users *service.UserService, auth *middleware.AuthMiddleware, v *validator.Validate) *AuthHandler {
	return &AuthHandler{
		users:     users,
		auth:      auth,
		validator: v,
	}
}

// Token handles POST /auth/token
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req model.TokenRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	u, err := h.users.GetUser(c.UserContext(), req.UserID)
	if err != nil {
		if service.KindOf(err) == service.KindNotFound {
			return response.Unauthorized(c, "Unknown user")
		}
		return handleServiceError(c, err)
	}

	token, err := h.auth.GenerateToken(u)
	if err != nil {
		return response.ServiceError(c, "Failed to sign token")
	}
	return response.OK(c, model.TokenResponse{Token: token, User: u})
}
