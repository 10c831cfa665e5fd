package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService handles project operations
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	auditTrail  *AuditTrailService
	logger      *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	auditTrail *AuditTrailService,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		auditTrail:  auditTrail,
		logger:      logger,
	}
}

// Create registers a new project
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.Project, error) {
	project := &domain.Project{
		Name:             req.Name,
		Location:         req.Location,
		Status:           domain.ProjectStatusActive,
		Budget:           req.Budget,
		StateCode:        req.StateCode,
		Milestones:       pq.StringArray(req.Milestones),
		RetentionPercent: req.RetentionPercent,
		GSTRequired:      true,
	}

	if req.StartDate != "" {
		startDate, err := domain.ParseDate(req.StartDate)
		if err != nil {
			return nil, ErrInvalidInput
		}
		project.StartDate = startDate
	}
	if req.GSTRequired != nil {
		project.GSTRequired = *req.GSTRequired
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project", zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditProjectCreated, project.ID.String(), project.Name)

	return project, nil
}

// GetByID returns a single project
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return project, nil
}

// List returns projects filtered by status
func (s *ProjectService) List(ctx context.Context, limit, offset int, status *domain.ProjectStatus) ([]domain.Project, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.projectRepo.List(ctx, limit, offset, status)
}

// Update modifies project details
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Location != nil {
		project.Location = *req.Location
	}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidInput
		}
		project.Status = status
	}
	if req.Budget != nil {
		project.Budget = *req.Budget
	}
	if req.Milestones != nil {
		project.Milestones = pq.StringArray(req.Milestones)
	}
	if req.RetentionPercent != nil {
		project.RetentionPercent = *req.RetentionPercent
	}
	if req.GSTRequired != nil {
		project.GSTRequired = *req.GSTRequired
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		s.logger.Error("failed to update project", zap.String("project_id", id.String()), zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditProjectUpdated, project.ID.String(), project.Name)

	return project, nil
}

// Search finds projects by name or location
func (s *ProjectService) Search(ctx context.Context, query string, limit int) ([]domain.Project, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.projectRepo.Search(ctx, query, limit)
}
