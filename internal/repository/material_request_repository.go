package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"gorm.io/gorm"
)

type MaterialRequestRepository struct {
	db *gorm.DB
}

func NewMaterialRequestRepository(db *gorm.DB) *MaterialRequestRepository {
	return &MaterialRequestRepository{db: db}
}

func (r *MaterialRequestRepository) Create(ctx context.Context, request *domain.MaterialRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *MaterialRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaterialRequest, error) {
	var request domain.MaterialRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *MaterialRequestRepository) Update(ctx context.Context, request *domain.MaterialRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// ListByProject returns all material requests for a project ordered by
// creation time, the order the leakage lookup depends on.
func (r *MaterialRequestRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.MaterialRequest, error) {
	var requests []domain.MaterialRequest
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *MaterialRequestRepository) List(ctx context.Context, limit, offset int, status *domain.MaterialStatus) ([]domain.MaterialRequest, int64, error) {
	var requests []domain.MaterialRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.MaterialRequest{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&requests).Error
	return requests, total, err
}

func (r *MaterialRequestRepository) ExistsByProjectAndItem(ctx context.Context, projectID uuid.UUID, itemName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.MaterialRequest{}).
		Where("project_id = ? AND LOWER(item_name) = LOWER(?)", projectID, itemName).
		Count(&count).Error
	return count > 0, err
}

func (r *MaterialRequestRepository) CountByStatus(ctx context.Context, status domain.MaterialStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.MaterialRequest{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
