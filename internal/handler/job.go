package handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopfloor/api/internal/middleware"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopfloor/api/internal/service"
	"github.com/shopfloor/api/pkg/response"
)

type JobHandler struct {
	service   *service.JobService
	validator *validator.Validate
}

func NewJobHandler(svc *service.JobService, v *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/jobs
func (h *JobHandler) Create(c *fiber.Ctx) error {
	var req model.CreateJobRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	spec, err := jobSpecFrom(&req)
	if err != nil {
		return response.ValidationError(c, "Validation failed", map[string]string{"DueDate": "datetime"})
	}

	job, err := h.service.CreateJob(middleware.Context(c), spec)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Created(c, job)
}

func jobSpecFrom(req *model.CreateJobRequest) (service.JobSpec, error) {
	due, err := time.Parse(model.DateLayout, req.DueDate)
	if err != nil {
		return service.JobSpec{}, err
	}

	ops := make([]model.Operation, 0, len(req.Operations))
	for _, o := range req.Operations {
		ops = append(ops, model.Operation{
			ID:          o.ID,
			Sequence:    o.Sequence,
			Description: o.Description,
			WorkCenter:  o.WorkCenter,
			EstTime:     o.EstTime,
			Status:      o.Status,
		})
	}

	return service.JobSpec{
		CustomerType:        req.CustomerType,
		Customer:            req.Customer,
		ContractID:          req.ContractID,
		ContactPerson:       req.ContactPerson,
		PartName:            req.PartName,
		DrawingNo:           req.DrawingNo,
		Revision:            req.Revision,
		Qty:                 req.Qty,
		Priority:            req.Priority,
		DueDate:             due,
		MaterialID:          req.MaterialID,
		MachineID:           req.MachineID,
		OperatorID:          req.OperatorID,
		SpecialInstructions: req.SpecialInstructions,
		NotifyCustomer:      req.NotifyCustomer,
		Operations:          ops,
	}, nil
}

// List handles GET /api/jobs
func (h *JobHandler) List(c *fiber.Ctx) error {
	filter := service.JobFilter{
		Status:     model.JobStatus(c.Query("status")),
		OperatorID: c.Query("operatorId"),
		MachineID:  c.Query("machineId"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return response.InvalidArgument(c, "Unknown job status")
	}

	return response.OK(c, h.service.ListJobs(middleware.Context(c), filter))
}

// Get handles GET /api/jobs/:jobId
func (h *JobHandler) Get(c *fiber.Ctx) error {
	job, err := h.service.GetJob(middleware.Context(c), c.Params("jobId"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.OK(c, job)
}

// Logs handles GET /api/jobs/:jobId/logs
func (h *JobHandler) Logs(c *fiber.Ctx) error {
	sorted := c.Query("sort") == "timestamp"
	logs, err := h.service.JobLogs(middleware.Context(c), c.Params("jobId"), sorted)
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.OK(c, logs)
}

// AppendLog handles POST /api/jobs/:jobId/logs
func (h *JobHandler) AppendLog(c *fiber.Ctx) error {
	var req model.AppendLogRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	entry, err := h.service.AppendLog(middleware.Context(c), c.Params("jobId"), req.Type, req.Message)
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.Created(c, entry)
}

// Transition handles POST /api/jobs/:jobId/transition
func (h *JobHandler) Transition(c *fiber.Ctx) error {
	var req model.TransitionRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	var update service.FieldUpdate
	switch {
	case req.Report != nil && req.ApprovedQty != nil:
		return response.InvalidArgument(c, "report and approvedQty cannot be combined")
	case req.Report != nil:
		update = service.ProductionReport{CompletedQty: req.Report.CompletedQty, ScrapQty: req.Report.ScrapQty}
	case req.ApprovedQty != nil:
		update = service.QCDecision{ApprovedQty: *req.ApprovedQty}
	}

	result, err := h.service.TransitionJob(middleware.Context(c), c.Params("jobId"), req.TargetStatus, req.Message, update)
	return h.reply(c, result, err)
}

// Start handles POST /api/jobs/:jobId/start
func (h *JobHandler) Start(c *fiber.Ctx) error {
	result, err := h.service.Start(middleware.Context(c), c.Params("jobId"))
	return h.reply(c, result, err)
}

// Pause handles POST /api/jobs/:jobId/pause
func (h *JobHandler) Pause(c *fiber.Ctx) error {
	return h.withReason(c, h.service.Pause)
}

// Resume handles POST /api/jobs/:jobId/resume
func (h *JobHandler) Resume(c *fiber.Ctx) error {
	result, err := h.service.Resume(middleware.Context(c), c.Params("jobId"))
	return h.reply(c, result, err)
}

// Report handles POST /api/jobs/:jobId/report
func (h *JobHandler) Report(c *fiber.Ctx) error {
	var req model.ProductionReportBody
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	result, err := h.service.ReportProduction(middleware.Context(c), c.Params("jobId"), req.CompletedQty, req.ScrapQty)
	return h.reply(c, result, err)
}

// Approve handles POST /api/jobs/:jobId/approve
func (h *JobHandler) Approve(c *fiber.Ctx) error {
	var req model.ApproveRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	result, err := h.service.ApproveQC(middleware.Context(c), c.Params("jobId"), req.ApprovedQty)
	return h.reply(c, result, err)
}

// Reject handles POST /api/jobs/:jobId/reject
func (h *JobHandler) Reject(c *fiber.Ctx) error {
	return h.withReason(c, h.service.RejectQC)
}

// Hold handles POST /api/jobs/:jobId/hold
func (h *JobHandler) Hold(c *fiber.Ctx) error {
	return h.withReason(c, h.service.Hold)
}

// Recall handles POST /api/jobs/:jobId/recall
func (h *JobHandler) Recall(c *fiber.Ctx) error {
	return h.withReason(c, h.service.Recall)
}

// Cancel handles POST /api/jobs/:jobId/cancel
func (h *JobHandler) Cancel(c *fiber.Ctx) error {
	return h.withReason(c, h.service.Cancel)
}

// Transfer handles POST /api/jobs/:jobId/transfer
func (h *JobHandler) Transfer(c *fiber.Ctx) error {
	var req model.TransferRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	to := service.Reassignment{MachineID: req.MachineID, OperatorID: req.OperatorID}
	result, err := h.service.TransferJob(middleware.Context(c), c.Params("jobId"), to, req.Reason)
	return h.reply(c, result, err)
}

type reasonAction func(ctx context.Context, jobID, reason string) (*service.TransitionResult, error)

func (h *JobHandler) withReason(c *fiber.Ctx, action reasonAction) error {
	var req model.ReasonRequest
	if ok, err := bindOptional(c, h.validator, &req); !ok {
		return err
	}

	result, err := action(middleware.Context(c), c.Params("jobId"), req.Reason)
	return h.reply(c, result, err)
}

func (h *JobHandler) reply(c *fiber.Ctx, result *service.TransitionResult, err error) error {
	if err != nil {
		return handleServiceError(c, err)
	}
	return response.OK(c, result)
}
