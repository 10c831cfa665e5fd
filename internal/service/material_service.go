package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/auth"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// validMaterialTransitions defines the procurement state machine
var validMaterialTransitions = map[domain.MaterialStatus][]domain.MaterialStatus{
	domain.MaterialStatusRequested: {domain.MaterialStatusApproved, domain.MaterialStatusRejected},
	domain.MaterialStatusApproved:  {domain.MaterialStatusDelivered},
}

// MaterialService handles material procurement operations
type MaterialService struct {
	materialRepo *repository.MaterialRequestRepository
	auditTrail   *AuditTrailService
	logger       *zap.Logger
}

// NewMaterialService creates a new material service
func NewMaterialService(
	materialRepo *repository.MaterialRequestRepository,
	auditTrail *AuditTrailService,
	logger *zap.Logger,
) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		auditTrail:   auditTrail,
		logger:       logger,
	}
}

// Create raises a material request. Item names are unique within a project
// so usage entries on DPRs resolve to exactly one request.
func (s *MaterialService) Create(ctx context.Context, req *domain.CreateMaterialRequestRequest) (*domain.MaterialRequest, error) {
	exists, err := s.materialRepo.ExistsByProjectAndItem(ctx, req.ProjectID, req.ItemName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateItemName
	}

	request := &domain.MaterialRequest{
		ProjectID:     req.ProjectID,
		ItemName:      req.ItemName,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
		Status:        domain.MaterialStatusRequested,
		RequestDate:   time.Now(),
		EstimatedCost: req.EstimatedCost,
	}

	if userCtx, ok := auth.FromContext(ctx); ok {
		request.RequestedBy = userCtx.Name
	}

	if err := s.materialRepo.Create(ctx, request); err != nil {
		s.logger.Error("failed to create material request", zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditMaterialRequested, request.ID.String(), request.ItemName)

	return request, nil
}

// GetByID returns a single material request
func (s *MaterialService) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaterialRequest, error) {
	request, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return request, nil
}

// List returns material requests filtered by status
func (s *MaterialService) List(ctx context.Context, limit, offset int, status *domain.MaterialStatus) ([]domain.MaterialRequest, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.materialRepo.List(ctx, limit, offset, status)
}

// ListByProject returns all requests of a project
func (s *MaterialService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.MaterialRequest, error) {
	return s.materialRepo.ListByProject(ctx, projectID)
}

// Approve moves a request to APPROVED
func (s *MaterialService) Approve(ctx context.Context, id uuid.UUID) (*domain.MaterialRequest, error) {
	return s.transition(ctx, id, domain.MaterialStatusApproved, domain.AuditMaterialApproved)
}

// Reject moves a request to REJECTED
func (s *MaterialService) Reject(ctx context.Context, id uuid.UUID) (*domain.MaterialRequest, error) {
	return s.transition(ctx, id, domain.MaterialStatusRejected, domain.AuditMaterialRejected)
}

// MarkDelivered moves an approved request to DELIVERED
func (s *MaterialService) MarkDelivered(ctx context.Context, id uuid.UUID) (*domain.MaterialRequest, error) {
	return s.transition(ctx, id, domain.MaterialStatusDelivered, domain.AuditMaterialDelivered)
}

func (s *MaterialService) transition(ctx context.Context, id uuid.UUID, to domain.MaterialStatus, auditAction string) (*domain.MaterialRequest, error) {
	request, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	allowed := false
	for _, next := range validMaterialTransitions[request.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}

	request.Status = to
	if err := s.materialRepo.Update(ctx, request); err != nil {
		s.logger.Error("failed to update material request",
			zap.String("request_id", id.String()),
			zap.String("status", string(to)),
			zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, auditAction, request.ID.String(), request.ItemName)

	return request, nil
}

// RecordUsage books consumed quantity directly against a request, outside
// the DPR flow (e.g. stock corrections).
func (s *MaterialService) RecordUsage(ctx context.Context, id uuid.UUID, usedQuantity float64) (*domain.MaterialRequest, error) {
	request, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	request.UsedQuantity = usedQuantity
	if err := s.materialRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}
