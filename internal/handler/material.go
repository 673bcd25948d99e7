package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopfloor/api/internal/middleware"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopfloor/api/internal/service"
	"github.com/shopfloor/api/pkg/response"
)

type MaterialHandler struct {
	service   *service.StockService
	validator *validator.Validate
}

func NewMaterialHandler(svc *service.StockService, v *validator.Validate) *MaterialHandler {
	return &MaterialHandler{
		service:   svc,
		validator: v,
	}
}

// List handles GET /api/materials
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	return response.OK(c, h.service.ListMaterials(middleware.Context(c)))
}

// Get handles GET /api/materials/:materialId
func (h *MaterialHandler) Get(c *fiber.Ctx) error {
	m, err := h.service.GetMaterial(middleware.Context(c), c.Params("materialId"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.OK(c, m)
}

// Move handles POST /api/materials/:materialId/movements
func (h *MaterialHandler) Move(c *fiber.Ctx) error {
	var req model.StockMovementRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	result, err := h.service.MoveStock(middleware.Context(c), c.Params("materialId"), req.Qty, req.Direction, req.Reference)
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.Created(c, result)
}

// Transactions handles GET /api/transactions
func (h *MaterialHandler) Transactions(c *fiber.Ctx) error {
	trxs, err := h.service.ListTransactions(middleware.Context(c), c.Query("materialId"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.OK(c, trxs)
}
