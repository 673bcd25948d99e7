package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/shopfloor/api/internal/config"
	"github.com/shopfloor/api/internal/handler"
	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/metrics"
	"github.com/shopfloor/api/internal/middleware"
	"github.com/shopfloor/api/internal/notify"
	"github.com/shopfloor/api/internal/seed"
	"github.com/shopfloor/api/internal/service"
	ws "github.com/shopfloor/api/internal/websocket"
	"github.com/shopfloor/api/internal/worker"
	"github.com/shopfloor/api/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize the ledger
	store := ledger.NewStore()
	if cfg.Seed.Enabled {
		if err := seed.Load(store, seed.Default()); err != nil {
			log.Fatalf("Failed to seed ledger: %v", err)
		}
		log.Println("Loaded seed data")
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize services
	opts := []service.Option{
		service.WithPublisher(ws.NewPublisher(hub, !cfg.Notify.Enabled)),
	}
	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
		opts = append(opts, service.WithMetrics(recorder))
	}
	if cfg.Notify.Enabled {
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		opts = append(opts, service.WithPublisher(notify.NewNotifier(asynqClient)))
	}

	jobService := service.NewJobService(store, opts...)
	machineService := service.NewMachineService(store, opts...)
	stockService := service.NewStockService(store, opts...)
	userService := service.NewUserService(store, opts...)
	reportService := service.NewReportService(store, opts...)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Hour)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize handlers
	handlers := &handler.Handlers{
		Jobs:      handler.NewJobHandler(jobService, validate),
		Machines:  handler.NewMachineHandler(machineService, validate),
		Materials: handler.NewMaterialHandler(stockService, validate),
		Users:     handler.NewUserHandler(userService, validate),
		Reports:   handler.NewReportHandler(reportService),
	}

	authenticate := authMiddleware.Authenticate()
	if cfg.Gateway.Enabled {
		authenticate = middleware.GatewayAuthMiddleware()
		log.Println("Using gateway identity headers")
	} else {
		handlers.Auth = handler.NewAuthHandler(userService, authMiddleware, validate)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"redis":   redisClient.Ping(c.Context()).Err() == nil,
				"notify":  cfg.Notify.Enabled,
				"metrics": cfg.Metrics.Enabled,
			},
		})
	})

	if recorder != nil {
		app.Get("/metrics", adaptor.HTTPHandler(recorder.Handler()))
	}

	// API routes
	handlers.Register(app, authenticate, rateLimiter, cfg.RateLimit)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/:topic", func(c *fiber.Ctx) error {
		if !ws.ValidTopic(c.Params("topic")) {
			return response.NotFound(c, "Unknown topic")
		}
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("topic"))
	}))

	// Start Asynq worker server
	var workers *asynq.Server
	if cfg.Notify.Enabled {
		workers = newWorkerServer(cfg, redisOpt)
		if err := startWorkers(workers, jobService, hub); err != nil {
			log.Printf("Warning: Asynq workers not started: %v", err)
			workers = nil
		}
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if workers != nil {
			workers.Shutdown()
		}
		hub.Stop()
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func newWorkerServer(cfg *config.Config, redisOpt asynq.RedisClientOpt) *asynq.Server {
	var level asynq.LogLevel
	if err := level.Set(cfg.Server.LogLevel); err != nil {
		log.Printf("Warning: %v, using info", err)
		level = asynq.InfoLevel
	}

	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Notify.Concurrency,
		LogLevel:    level,
		Queues: map[string]int{
			notify.QueueAlerts:        6,
			notify.QueueNotifications: 4,
		},
	})
}

func startWorkers(srv *asynq.Server, jobService *service.JobService, hub *ws.Hub) error {
	// Create workers
	alertWorker := worker.NewAlertWorker(hub)
	notifyWorker := worker.NewNotifyWorker(jobService, hub)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TaskTypeStockAlert, alertWorker.ProcessTask)
	mux.HandleFunc(notify.TaskTypeCustomerNotify, notifyWorker.ProcessTask)

	return srv.Start(mux)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, response.CodeServiceError, message, nil)
}
