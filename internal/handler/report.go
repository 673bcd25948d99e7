package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopfloor/api/internal/middleware"
	"github.com/shopfloor/api/internal/service"
	"github.com/shopfloor/api/pkg/response"
)

type ReportHandler struct {
	service *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Summary handles GET /api/reports/summary
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	return response.OK(c, h.service.Summary(middleware.Context(c)))
}
