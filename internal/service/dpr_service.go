package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/nirmaanhq/siteops-api/internal/auth"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"github.com/nirmaanhq/siteops-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// leakageThreshold marks consumption more than 10% above the requested
// quantity as suspicious.
const leakageThreshold = 1.1

// DPRService handles daily progress report operations
type DPRService struct {
	db           *gorm.DB
	dprRepo      *repository.DPRRepository
	taskRepo     *repository.TaskRepository
	materialRepo *repository.MaterialRequestRepository
	auditTrail   *AuditTrailService
	storage      storage.Storage
	logger       *zap.Logger
}

// NewDPRService creates a new DPR service
func NewDPRService(
	db *gorm.DB,
	dprRepo *repository.DPRRepository,
	taskRepo *repository.TaskRepository,
	materialRepo *repository.MaterialRequestRepository,
	auditTrail *AuditTrailService,
	store storage.Storage,
	logger *zap.Logger,
) *DPRService {
	return &DPRService{
		db:           db,
		dprRepo:      dprRepo,
		taskRepo:     taskRepo,
		materialRepo: materialRepo,
		auditTrail:   auditTrail,
		storage:      store,
		logger:       logger,
	}
}

// DetectLeakage evaluates material consumption against the project's
// requests. For each usage entry the first request with the same item name
// is consulted; consumption above 110% of the requested quantity raises the
// alert. When several entries exceed the threshold the description of the
// last one wins. The result is computed once at submission and persisted
// with the report; it describes the DPR as reviewed, so it does not change
// afterwards even if requests do.
func DetectLeakage(usages []domain.DPRMaterialUsage, requests []domain.MaterialRequest) (bool, string) {
	alert := false
	excess := ""

	for _, usage := range usages {
		for i := range requests {
			if requests[i].ItemName != usage.ItemName {
				continue
			}
			if requests[i].Quantity > 0 && usage.QuantityUsed > requests[i].Quantity*leakageThreshold {
				pct := math.Round((usage.QuantityUsed - requests[i].Quantity) / requests[i].Quantity * 100)
				alert = true
				excess = fmt.Sprintf("%d%% above request", int(pct))
			}
			break
		}
	}

	return alert, excess
}

// Submit records a new DPR. Referenced tasks move to PENDING_APPROVAL, the
// leakage annotation is computed and persisted, and consumed quantities are
// booked against the matching material requests.
func (s *DPRService) Submit(ctx context.Context, req *domain.SubmitDPRRequest) (*domain.DPR, error) {
	reportDate, err := domain.ParseDate(req.ReportDate)
	if err != nil {
		return nil, ErrInvalidInput
	}

	requests, err := s.materialRepo.ListByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	usages := make([]domain.DPRMaterialUsage, 0, len(req.MaterialsUsed))
	for _, u := range req.MaterialsUsed {
		usages = append(usages, domain.DPRMaterialUsage{
			ItemName:     u.ItemName,
			QuantityUsed: u.QuantityUsed,
		})
	}

	alert, excess := DetectLeakage(usages, requests)

	taskIDs := make([]string, 0, len(req.CompletedTaskIDs))
	for _, id := range req.CompletedTaskIDs {
		taskIDs = append(taskIDs, id.String())
	}

	dpr := &domain.DPR{
		ProjectID:        req.ProjectID,
		ReportDate:       reportDate,
		Description:      req.Description,
		Weather:          req.Weather,
		WorkforceCount:   req.WorkforceCount,
		CompletedTaskIDs: pq.StringArray(taskIDs),
		ApprovalStatus:   domain.ApprovalStatusPending,
		LeakageAlert:     alert,
		LeakageExcess:    excess,
		MaterialsUsed:    usages,
	}

	if userCtx, ok := auth.FromContext(ctx); ok {
		dpr.SubmittedBy = userCtx.Name
		dpr.SubmittedByID = userCtx.UserID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dpr).Error; err != nil {
			return err
		}

		for _, taskID := range req.CompletedTaskIDs {
			var task domain.Task
			if err := tx.Where("id = ?", taskID).First(&task).Error; err != nil {
				return fmt.Errorf("referenced task %s: %w", taskID, err)
			}
			if task.ProjectID != req.ProjectID {
				return ErrInvalidInput
			}
			if task.Status != domain.TaskStatusInProgress && task.Status != domain.TaskStatusPending {
				return ErrInvalidTransition
			}
			task.Status = domain.TaskStatusPendingApproval
			task.RelatedDPRID = &dpr.ID
			if err := tx.Save(&task).Error; err != nil {
				return err
			}
		}

		// Book consumption against the first matching request
		for _, usage := range usages {
			for i := range requests {
				if requests[i].ItemName != usage.ItemName {
					continue
				}
				requests[i].UsedQuantity += usage.QuantityUsed
				if err := tx.Save(&requests[i]).Error; err != nil {
					return err
				}
				break
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("failed to submit DPR", zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditDPRSubmitted, dpr.ID.String(), "")

	if alert {
		s.logger.Warn("material leakage detected on DPR",
			zap.String("dpr_id", dpr.ID.String()),
			zap.String("excess", excess))
	}

	return dpr, nil
}

// GetByID returns a single DPR with its material usage entries
func (s *DPRService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DPR, error) {
	dpr, err := s.dprRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return dpr, nil
}

// List returns DPRs filtered by approval status
func (s *DPRService) List(ctx context.Context, limit, offset int, status *domain.ApprovalStatus) ([]domain.DPR, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.dprRepo.List(ctx, limit, offset, status)
}

// ListByProject returns the most recent DPRs of a project
func (s *DPRService) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]domain.DPR, error) {
	return s.dprRepo.ListByProject(ctx, projectID, limit)
}

// Approve accepts a pending DPR. The report and every task it references
// change state in one transaction: either the DPR is approved and all its
// tasks complete, or nothing moves.
func (s *DPRService) Approve(ctx context.Context, id uuid.UUID, remarks string) (*domain.DPR, error) {
	return s.review(ctx, id, remarks, true)
}

// Reject declines a pending DPR; referenced tasks return as rejected with
// the approver's remarks so the crew can rework them.
func (s *DPRService) Reject(ctx context.Context, id uuid.UUID, remarks string) (*domain.DPR, error) {
	return s.review(ctx, id, remarks, false)
}

func (s *DPRService) review(ctx context.Context, id uuid.UUID, remarks string, approve bool) (*domain.DPR, error) {
	dpr, err := s.dprRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if dpr.ApprovalStatus != domain.ApprovalStatusPending {
		return nil, ErrInvalidTransition
	}

	newDPRStatus := domain.ApprovalStatusApproved
	newTaskStatus := domain.TaskStatusCompleted
	auditAction := domain.AuditDPRApproved
	if !approve {
		newDPRStatus = domain.ApprovalStatusRejected
		newTaskStatus = domain.TaskStatusRejected
		auditAction = domain.AuditDPRRejected
	}

	var approverID *uuid.UUID
	if userCtx, ok := auth.FromContext(ctx); ok {
		approverID = &userCtx.UserID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dpr.ApprovalStatus = newDPRStatus
		dpr.ApproverID = approverID
		dpr.ApproverRemarks = remarks
		if err := tx.Save(dpr).Error; err != nil {
			return err
		}

		for _, rawID := range dpr.CompletedTaskIDs {
			taskID, err := uuid.Parse(rawID)
			if err != nil {
				return fmt.Errorf("malformed task reference %q: %w", rawID, err)
			}

			var task domain.Task
			if err := tx.Where("id = ?", taskID).First(&task).Error; err != nil {
				return fmt.Errorf("referenced task %s: %w", taskID, err)
			}
			if task.Status != domain.TaskStatusPendingApproval || task.RelatedDPRID == nil || *task.RelatedDPRID != dpr.ID {
				return ErrInvalidTransition
			}

			task.Status = newTaskStatus
			task.Remarks = remarks
			if approve {
				now := dpr.ReportDate
				task.CompletedAt = &now
			}
			if err := tx.Save(&task).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("failed to review DPR",
			zap.String("dpr_id", id.String()),
			zap.Bool("approve", approve),
			zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, auditAction, dpr.ID.String(), remarks)

	return dpr, nil
}

// AttachPhoto stores a site photo for the DPR
func (s *DPRService) AttachPhoto(ctx context.Context, id uuid.UUID, filename, contentType string, data io.Reader) (*domain.DPR, error) {
	dpr, err := s.dprRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	path, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		s.logger.Error("failed to store DPR photo", zap.String("dpr_id", id.String()), zap.Error(err))
		return nil, err
	}

	dpr.PhotoPath = path
	if err := s.dprRepo.Update(ctx, dpr); err != nil {
		return nil, err
	}

	s.logger.Info("DPR photo stored",
		zap.String("dpr_id", id.String()),
		zap.String("path", path),
		zap.Int64("size", size))

	return dpr, nil
}

// Photo streams the stored site photo
func (s *DPRService) Photo(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	dpr, err := s.dprRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if dpr.PhotoPath == "" {
		return nil, ErrNotFound
	}
	return s.storage.Download(ctx, dpr.PhotoPath)
}
