package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopfloor/api/internal/middleware"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopfloor/api/internal/service"
	"github.com/shopfloor/api/pkg/response"
)

type MachineHandler struct {
	service   *service.MachineService
	validator *validator.Validate
}

func NewMachineHandler(svc *service.MachineService, v *validator.Validate) *MachineHandler {
	return &MachineHandler{
		service:   svc,
		validator: v,
	}
}

// List handles GET /api/machines
func (h *MachineHandler) List(c *fiber.Ctx) error {
	return response.OK(c, h.service.ListMachines(middleware.Context(c)))
}

// Get handles GET /api/machines/:machineId
func (h *MachineHandler) Get(c *fiber.Ctx) error {
	m, err := h.service.GetMachine(middleware.Context(c), c.Params("machineId"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.OK(c, m)
}

// SetStatus handles PUT /api/machines/:machineId/status
func (h *MachineHandler) SetStatus(c *fiber.Ctx) error {
	var req model.MachineStatusRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	m, err := h.service.SetMachineStatus(middleware.Context(c), c.Params("machineId"), req.Status)
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.OK(c, m)
}

// ScheduleMaintenance handles POST /api/machines/:machineId/maintenance
func (h *MachineHandler) ScheduleMaintenance(c *fiber.Ctx) error {
	var req model.ScheduleMaintenanceRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	entry, err := h.service.ScheduleMaintenance(middleware.Context(c), c.Params("machineId"), &req)
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.Created(c, entry)
}

// Maintenance handles GET /api/maintenance
func (h *MachineHandler) Maintenance(c *fiber.Ctx) error {
	logs, err := h.service.ListMaintenance(middleware.Context(c), c.Query("machineId"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.OK(c, logs)
}
