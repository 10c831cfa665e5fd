package handler

import (
	"net/http"

	"github.com/nirmaanhq/siteops-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// @Summary Dashboard metrics
// @Description Headline numbers across projects, tasks, reports, materials and billing
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardMetrics
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboardService.Metrics(r.Context())
	if err != nil {
		h.logger.Error("failed to compute dashboard metrics", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to compute dashboard metrics")
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}
