package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nirmaanhq/siteops-api/docs"
	"github.com/nirmaanhq/siteops-api/internal/ai"
	"github.com/nirmaanhq/siteops-api/internal/auth"
	"github.com/nirmaanhq/siteops-api/internal/config"
	"github.com/nirmaanhq/siteops-api/internal/database"
	"github.com/nirmaanhq/siteops-api/internal/erp"
	"github.com/nirmaanhq/siteops-api/internal/http/handler"
	"github.com/nirmaanhq/siteops-api/internal/http/middleware"
	"github.com/nirmaanhq/siteops-api/internal/http/router"
	"github.com/nirmaanhq/siteops-api/internal/jobs"
	"github.com/nirmaanhq/siteops-api/internal/logger"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"github.com/nirmaanhq/siteops-api/internal/storage"
	"go.uber.org/zap"
)

// paymentSyncTimeout bounds one reconciliation pass against the accounting export
const paymentSyncTimeout = 2 * time.Minute

// @title SiteOps API
// @version 1.0
// @description Construction site management API: projects, tasks, daily progress reports, materials, attendance and GST billing
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@nirmaanhq.in

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "siteops-staging.nirmaanhq.in"
	case "production":
		docs.SwaggerInfo.Host = "api.nirmaanhq.in"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if err := database.Seed(db, log); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
		log.Info("Database migrated and seeded")
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize ERP connection (optional - for payment reconciliation)
	// This connection is read-only and the app continues without it if not configured
	erpClient, err := erp.NewClient(&cfg.ERP, log)
	if err != nil {
		log.Warn("ERP connection failed, continuing without payment sync", zap.Error(err))
	}

	// Initialize AI client (optional - insights degrade to fallbacks without it)
	aiClient := ai.NewClient(&cfg.AI, log)

	// Initialize repositories
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	materialRepo := repository.NewMaterialRequestRepository(db)
	dprRepo := repository.NewDPRRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	partyRepo := repository.NewPartyRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)

	// Initialize services
	// Audit trail first; every state-changing service records through it
	auditTrail := service.NewAuditTrailService(auditRepo, log)

	projectService := service.NewProjectService(projectRepo, auditTrail, log)
	taskService := service.NewTaskService(taskRepo, materialRepo, auditTrail, log)
	materialService := service.NewMaterialService(materialRepo, auditTrail, log)
	dprService := service.NewDPRService(db, dprRepo, taskRepo, materialRepo, auditTrail, fileStorage, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, projectRepo, partyRepo, sequenceRepo, auditTrail, log)
	partyService := service.NewPartyService(partyRepo, auditTrail, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, auditTrail, log)
	insightsService := service.NewInsightsService(aiClient, projectRepo, dprRepo, materialRepo, log)
	dashboardService := service.NewDashboardService(projectRepo, taskRepo, dprRepo, materialRepo, invoiceRepo, log)
	userService := service.NewUserService(userRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	projectHandler := handler.NewProjectHandler(projectService, insightsService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	dprHandler := handler.NewDPRHandler(dprService, insightsService, log)
	materialHandler := handler.NewMaterialHandler(materialService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	partyHandler := handler.NewPartyHandler(partyService, log)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, log)
	auditHandler := handler.NewAuditHandler(auditTrail, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	authHandler := handler.NewAuthHandler(userService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		projectHandler,
		taskHandler,
		dprHandler,
		materialHandler,
		invoiceHandler,
		partyHandler,
		attendanceHandler,
		auditHandler,
		dashboardHandler,
		authHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if erpClient.IsEnabled() {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterPaymentSyncJob(
			scheduler,
			invoiceService,
			erpClient,
			log,
			cfg.Jobs.PaymentSyncSchedule,
			paymentSyncTimeout,
		); err != nil {
			log.Error("Failed to register payment sync job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with payment sync job",
				zap.String("cron_expr", cfg.Jobs.PaymentSyncSchedule),
			)
		}
	} else {
		log.Info("Payment sync disabled, ERP connection not available")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP connection if initialized
		if err := erpClient.Close(); err != nil {
			log.Warn("Error closing ERP connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
