package service

import (
	"context"
	"sync"
	"time"

	"github.com/nirmaanhq/siteops-api/internal/auth"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"go.uber.org/zap"
)

// AuditTrailService appends entries to the audit trail. Every state-changing
// operation records exactly one entry, after the mutation has succeeded.
// Entries are never updated or deleted.
type AuditTrailService struct {
	auditRepo *repository.AuditRepository
	logger    *zap.Logger

	mu     sync.Mutex
	lastID int64
}

// NewAuditTrailService creates a new audit trail service
func NewAuditTrailService(auditRepo *repository.AuditRepository, logger *zap.Logger) *AuditTrailService {
	return &AuditTrailService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// nextID derives an entry id from the wall clock. IDs stay strictly
// increasing even when two entries land in the same nanosecond.
func (s *AuditTrailService) nextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := time.Now().UnixNano()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Record appends one audit entry. The actor is taken from the authenticated
// request context; system-initiated mutations (jobs) record the "system"
// actor. Failures are logged and returned but must not roll back the
// mutation they describe.
func (s *AuditTrailService) Record(ctx context.Context, action, targetID, remarks string) error {
	entry := &domain.AuditEntry{
		ID:          s.nextID(),
		Action:      action,
		PerformedBy: "system",
		Role:        domain.RoleAdmin,
		TargetID:    targetID,
		Remarks:     remarks,
		Timestamp:   time.Now(),
	}

	if userCtx, ok := auth.FromContext(ctx); ok {
		entry.PerformedBy = userCtx.Name
		entry.Role = userCtx.Role
	}

	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("action", action),
			zap.String("target_id", targetID),
			zap.Error(err))
		return err
	}

	return nil
}

// AuditQueryParams represents query parameters for listing the trail
type AuditQueryParams struct {
	Action      string
	TargetID    string
	PerformedBy string
	Limit       int
	Offset      int
}

// List retrieves audit entries with filters, newest first
func (s *AuditTrailService) List(ctx context.Context, params AuditQueryParams) ([]domain.AuditEntry, int64, error) {
	limit := params.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.auditRepo.List(ctx, limit, params.Offset, repository.AuditFilter{
		Action:      params.Action,
		TargetID:    params.TargetID,
		PerformedBy: params.PerformedBy,
	})
}

// GetByTarget retrieves the full history for one entity, oldest first
func (s *AuditTrailService) GetByTarget(ctx context.Context, targetID string) ([]domain.AuditEntry, error) {
	return s.auditRepo.ListByTarget(ctx, targetID)
}
