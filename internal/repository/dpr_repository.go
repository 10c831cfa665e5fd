package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"gorm.io/gorm"
)

type DPRRepository struct {
	db *gorm.DB
}

func NewDPRRepository(db *gorm.DB) *DPRRepository {
	return &DPRRepository{db: db}
}

func (r *DPRRepository) Create(ctx context.Context, dpr *domain.DPR) error {
	return r.db.WithContext(ctx).Create(dpr).Error
}

func (r *DPRRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DPR, error) {
	var dpr domain.DPR
	err := r.db.WithContext(ctx).Preload("MaterialsUsed").Where("id = ?", id).First(&dpr).Error
	if err != nil {
		return nil, err
	}
	return &dpr, nil
}

func (r *DPRRepository) Update(ctx context.Context, dpr *domain.DPR) error {
	return r.db.WithContext(ctx).Save(dpr).Error
}

func (r *DPRRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]domain.DPR, error) {
	var dprs []domain.DPR
	query := r.db.WithContext(ctx).Preload("MaterialsUsed").
		Where("project_id = ?", projectID).
		Order("report_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&dprs).Error
	return dprs, err
}

func (r *DPRRepository) List(ctx context.Context, limit, offset int, status *domain.ApprovalStatus) ([]domain.DPR, int64, error) {
	var dprs []domain.DPR
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.DPR{})
	if status != nil {
		query = query.Where("approval_status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("MaterialsUsed").
		Offset(offset).Limit(limit).
		Order("report_date DESC").
		Find(&dprs).Error
	return dprs, total, err
}

func (r *DPRRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.DPR{}).
		Where("approval_status = ?", domain.ApprovalStatusPending).
		Count(&count).Error
	return count, err
}
