package service

import (
	"context"
	"time"

	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService aggregates headline metrics for the home screen
type DashboardService struct {
	projectRepo  *repository.ProjectRepository
	taskRepo     *repository.TaskRepository
	dprRepo      *repository.DPRRepository
	materialRepo *repository.MaterialRequestRepository
	invoiceRepo  *repository.InvoiceRepository
	logger       *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	projectRepo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	dprRepo *repository.DPRRepository,
	materialRepo *repository.MaterialRequestRepository,
	invoiceRepo *repository.InvoiceRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		projectRepo:  projectRepo,
		taskRepo:     taskRepo,
		dprRepo:      dprRepo,
		materialRepo: materialRepo,
		invoiceRepo:  invoiceRepo,
		logger:       logger,
	}
}

// Metrics computes the dashboard counters. Delayed tasks are derived with
// the same projection the task list uses, scanning open tasks per project.
func (s *DashboardService) Metrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	metrics := &domain.DashboardMetrics{}

	activeProjects, err := s.projectRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ActiveProjects = activeProjects

	openTasks, err := s.taskRepo.CountOpen(ctx)
	if err != nil {
		return nil, err
	}
	metrics.OpenTasks = openTasks

	pendingDPRs, err := s.dprRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	metrics.PendingDPRs = pendingDPRs

	pendingMaterials, err := s.materialRepo.CountByStatus(ctx, domain.MaterialStatusRequested)
	if err != nil {
		return nil, err
	}
	metrics.PendingMaterials = pendingMaterials

	outstanding, err := s.invoiceRepo.SumOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	metrics.OutstandingBilling = outstanding

	delayed, err := s.countDelayedTasks(ctx)
	if err != nil {
		// The dashboard should still render if the projection scan fails
		s.logger.Warn("failed to count delayed tasks", zap.Error(err))
	} else {
		metrics.DelayedTasks = delayed
	}

	return metrics, nil
}

func (s *DashboardService) countDelayedTasks(ctx context.Context) (int, error) {
	projects, _, err := s.projectRepo.List(ctx, 200, 0, nil)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	count := 0
	for _, project := range projects {
		tasks, err := s.taskRepo.ListByProject(ctx, project.ID)
		if err != nil {
			return 0, err
		}
		materials, err := s.materialRepo.ListByProject(ctx, project.ID)
		if err != nil {
			return 0, err
		}
		for i := range tasks {
			if tasks[i].Status == domain.TaskStatusCompleted || tasks[i].Status == domain.TaskStatusRejected {
				continue
			}
			if delayed, _ := DelayAnnotation(&tasks[i], materials, now); delayed {
				count++
			}
		}
	}
	return count, nil
}
