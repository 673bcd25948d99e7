package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopfloor/api/internal/middleware"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopfloor/api/internal/service"
	"github.com/shopfloor/api/pkg/response"
)

type UserHandler struct {
	service   *service.UserService
	validator *validator.Validate
}

func NewUserHandler(svc *service.UserService, v *validator.Validate) *UserHandler {
	return &UserHandler{
		service:   svc,
		validator: v,
	}
}

// List handles GET /api/users
func (h *UserHandler) List(c *fiber.Ctx) error {
	return response.OK(c, h.service.ListUsers(middleware.Context(c)))
}

// Create handles POST /api/users
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req model.CreateUserRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	u, err := h.service.CreateUser(middleware.Context(c), &req)
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.Created(c, u)
}
