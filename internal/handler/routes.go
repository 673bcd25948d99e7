package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopfloor/api/internal/config"
	"github.com/shopfloor/api/internal/middleware"
	"github.com/shopfloor/api/internal/model"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Jobs      *JobHandler
	Machines  *MachineHandler
	Materials *MaterialHandler
	Users     *UserHandler
	Reports   *ReportHandler
	Auth      *AuthHandler // nil when identity comes from the gateway
}

// Register mounts the API. authenticate populates the caller identity.
func (h *Handlers) Register(app *fiber.App, authenticate fiber.Handler, limiter *middleware.RateLimiter, limits config.RateLimitConfig) {
	if h.Auth != nil {
		app.Post("/auth/token", h.Auth.Token)
	}

	api := app.Group("/api", authenticate)
	transitions := limiter.TransitionLimit(limits.TransitionsPerMin)
	planners := middleware.RequireRole(middleware.Planners...)
	production := middleware.RequireRole(middleware.Production...)
	quality := middleware.RequireRole(middleware.Quality...)

	// Job routes
	jobs := api.Group("/jobs")
	jobs.Get("/", h.Jobs.List)
	jobs.Post("/", planners, h.Jobs.Create)
	jobs.Get("/:jobId", h.Jobs.Get)
	jobs.Get("/:jobId/logs", h.Jobs.Logs)
	jobs.Post("/:jobId/logs", h.Jobs.AppendLog)
	jobs.Post("/:jobId/transition", planners, transitions, h.Jobs.Transition)
	jobs.Post("/:jobId/start", production, transitions, h.Jobs.Start)
	jobs.Post("/:jobId/pause", production, transitions, h.Jobs.Pause)
	jobs.Post("/:jobId/resume", production, transitions, h.Jobs.Resume)
	jobs.Post("/:jobId/report", production, transitions, h.Jobs.Report)
	jobs.Post("/:jobId/approve", quality, transitions, h.Jobs.Approve)
	jobs.Post("/:jobId/reject", quality, transitions, h.Jobs.Reject)
	jobs.Post("/:jobId/hold", planners, transitions, h.Jobs.Hold)
	jobs.Post("/:jobId/recall", planners, transitions, h.Jobs.Recall)
	jobs.Post("/:jobId/cancel", planners, transitions, h.Jobs.Cancel)
	jobs.Post("/:jobId/transfer", planners, transitions, h.Jobs.Transfer)

	// Machine routes
	machines := api.Group("/machines")
	machines.Get("/", h.Machines.List)
	machines.Get("/:machineId", h.Machines.Get)
	machines.Put("/:machineId/status", planners, h.Machines.SetStatus)
	machines.Post("/:machineId/maintenance", planners, h.Machines.ScheduleMaintenance)
	api.Get("/maintenance", h.Machines.Maintenance)

	// Material routes
	materials := api.Group("/materials")
	materials.Get("/", h.Materials.List)
	materials.Get("/:materialId", h.Materials.Get)
	materials.Post("/:materialId/movements", limiter.MovementLimit(limits.MovementsPerMin), h.Materials.Move)
	api.Get("/transactions", h.Materials.Transactions)

	// User routes
	api.Get("/users", h.Users.List)
	api.Post("/users", middleware.RequireRole(model.RoleAdmin), h.Users.Create)

	// Reports
	api.Get("/reports/summary", h.Reports.Summary)
}
