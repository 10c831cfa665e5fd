package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"gorm.io/gorm"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(ctx context.Context, record *domain.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *AttendanceRepository) Update(ctx context.Context, record *domain.AttendanceRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// GetOpenForUser returns the user's current check-in without a matching
// check-out, if one exists.
func (r *AttendanceRepository) GetOpenForUser(ctx context.Context, userID uuid.UUID) (*domain.AttendanceRecord, error) {
	var record domain.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND check_out_time IS NULL", userID).
		Order("check_in_time DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *AttendanceRepository) ListByProject(ctx context.Context, projectID uuid.UUID, from, to time.Time) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if !from.IsZero() {
		query = query.Where("check_in_time >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("check_in_time < ?", to)
	}
	err := query.Order("check_in_time DESC").Find(&records).Error
	return records, err
}

func (r *AttendanceRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_in_time DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
