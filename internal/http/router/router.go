package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nirmaanhq/siteops-api/internal/auth"
	"github.com/nirmaanhq/siteops-api/internal/config"
	"github.com/nirmaanhq/siteops-api/internal/database"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/erp"
	"github.com/nirmaanhq/siteops-api/internal/http/handler"
	"github.com/nirmaanhq/siteops-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/nirmaanhq/siteops-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	db                *gorm.DB
	erpClient         *erp.Client
	authMiddleware    *auth.Middleware
	rateLimiter       *middleware.RateLimiter
	projectHandler    *handler.ProjectHandler
	taskHandler       *handler.TaskHandler
	dprHandler        *handler.DPRHandler
	materialHandler   *handler.MaterialHandler
	invoiceHandler    *handler.InvoiceHandler
	partyHandler      *handler.PartyHandler
	attendanceHandler *handler.AttendanceHandler
	auditHandler      *handler.AuditHandler
	dashboardHandler  *handler.DashboardHandler
	authHandler       *handler.AuthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *erp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	projectHandler *handler.ProjectHandler,
	taskHandler *handler.TaskHandler,
	dprHandler *handler.DPRHandler,
	materialHandler *handler.MaterialHandler,
	invoiceHandler *handler.InvoiceHandler,
	partyHandler *handler.PartyHandler,
	attendanceHandler *handler.AttendanceHandler,
	auditHandler *handler.AuditHandler,
	dashboardHandler *handler.DashboardHandler,
	authHandler *handler.AuthHandler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		erpClient:         erpClient,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		projectHandler:    projectHandler,
		taskHandler:       taskHandler,
		dprHandler:        dprHandler,
		materialHandler:   materialHandler,
		invoiceHandler:    invoiceHandler,
		partyHandler:      partyHandler,
		attendanceHandler: attendanceHandler,
		auditHandler:      auditHandler,
		dashboardHandler:  dashboardHandler,
		authHandler:       authHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// Check ERP connection when configured; an unhealthy ERP degrades
		// payment reconciliation but does not fail readiness.
		if rt.erpClient.IsEnabled() {
			status := rt.erpClient.HealthCheck(r.Context())
			erpCheck := map[string]interface{}{
				"status":     status.Status,
				"latency_ms": status.Latency.Milliseconds(),
			}
			if status.Error != "" {
				erpCheck["error"] = status.Error
			}
			checks["erp"] = erpCheck
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth & users
			r.Get("/auth/me", rt.authHandler.Me)
			r.Get("/users", rt.authHandler.ListUsers)
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Put("/users/{id}/role", rt.authHandler.SetRole)
				r.Post("/users/{id}/activate", rt.authHandler.Activate)
			})

			// Audit trail
			r.Route("/audit", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.auditHandler.List)
				r.Get("/target/{targetId}", rt.auditHandler.GetByTarget)
			})

			// Projects
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.Get("/search", rt.projectHandler.Search)
				r.Get("/{id}", rt.projectHandler.GetByID)
				r.Get("/{id}/summary", rt.projectHandler.Summary)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleManager, domain.RoleAdmin, domain.RoleOwner))
					r.Post("/", rt.projectHandler.Create)
					r.Put("/{id}", rt.projectHandler.Update)
				})
			})

			// Tasks
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", rt.taskHandler.List)
				r.Post("/", rt.taskHandler.Create)
				r.Get("/{id}", rt.taskHandler.GetByID)
				r.Put("/{id}", rt.taskHandler.Update)
				r.Post("/{id}/start", rt.taskHandler.Start)
			})

			// Daily progress reports
			r.Route("/dprs", func(r chi.Router) {
				r.Get("/", rt.dprHandler.List)
				r.Post("/", rt.dprHandler.Submit)
				r.Post("/transcribe", rt.dprHandler.Transcribe)
				r.Get("/{id}", rt.dprHandler.GetByID)
				r.Post("/{id}/photo", rt.dprHandler.UploadPhoto)
				r.Get("/{id}/photo", rt.dprHandler.DownloadPhoto)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleSupervisor, domain.RoleManager, domain.RoleAdmin, domain.RoleOwner))
					r.Post("/{id}/approve", rt.dprHandler.Approve)
					r.Post("/{id}/reject", rt.dprHandler.Reject)
				})
			})

			// Material requests
			r.Route("/materials", func(r chi.Router) {
				r.Get("/", rt.materialHandler.List)
				r.Post("/", rt.materialHandler.Create)
				r.Get("/{id}", rt.materialHandler.GetByID)
				r.Put("/{id}/usage", rt.materialHandler.RecordUsage)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleSupervisor, domain.RoleManager, domain.RoleAdmin, domain.RoleOwner))
					r.Post("/{id}/approve", rt.materialHandler.Approve)
					r.Post("/{id}/reject", rt.materialHandler.Reject)
					r.Post("/{id}/deliver", rt.materialHandler.Deliver)
				})
			})

			// Invoices
			r.Route("/invoices", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RoleManager, domain.RoleAdmin, domain.RoleOwner))
				r.Get("/", rt.invoiceHandler.List)
				r.Post("/", rt.invoiceHandler.Create)
				r.Get("/{id}", rt.invoiceHandler.GetByID)
				r.Post("/{id}/issue", rt.invoiceHandler.Issue)
				r.Post("/{id}/pay", rt.invoiceHandler.MarkPaid)
			})

			// Parties
			r.Route("/parties", func(r chi.Router) {
				r.Get("/", rt.partyHandler.List)
				r.Get("/{id}", rt.partyHandler.GetByID)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleManager, domain.RoleAdmin, domain.RoleOwner))
					r.Post("/", rt.partyHandler.Create)
					r.Put("/{id}", rt.partyHandler.Update)
				})
			})

			// Attendance
			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", rt.attendanceHandler.List)
				r.Get("/me", rt.attendanceHandler.Mine)
				r.Post("/check-in", rt.attendanceHandler.CheckIn)
				r.Post("/check-out", rt.attendanceHandler.CheckOut)
			})

			// Dashboard
			r.Get("/dashboard/metrics", rt.dashboardHandler.GetMetrics)
		})
	})

	return r
}
