package repository

import (
	"context"

	"github.com/nirmaanhq/siteops-api/internal/domain"
	"gorm.io/gorm"
)

// AuditRepository persists the append-only audit trail. There are no
// update or delete methods on purpose.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AuditFilter narrows audit trail queries
type AuditFilter struct {
	Action      string
	TargetID    string
	PerformedBy string
}

func (r *AuditRepository) List(ctx context.Context, limit, offset int, filter AuditFilter) ([]domain.AuditEntry, int64, error) {
	var entries []domain.AuditEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.AuditEntry{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
	}
	if filter.PerformedBy != "" {
		query = query.Where("performed_by = ?", filter.PerformedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(offset).Limit(limit).Order("id DESC").Find(&entries).Error
	return entries, total, err
}

func (r *AuditRepository) ListByTarget(ctx context.Context, targetID string) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}
