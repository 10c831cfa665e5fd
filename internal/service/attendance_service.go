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

// AttendanceService handles site attendance with geolocation capture
type AttendanceService struct {
	attendanceRepo *repository.AttendanceRepository
	auditTrail     *AuditTrailService
	logger         *zap.Logger
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	attendanceRepo *repository.AttendanceRepository,
	auditTrail *AuditTrailService,
	logger *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		auditTrail:     auditTrail,
		logger:         logger,
	}
}

// CheckIn opens an attendance record for the authenticated user. A user can
// hold only one open check-in at a time.
func (s *AttendanceService) CheckIn(ctx context.Context, req *domain.CheckInRequest) (*domain.AttendanceRecord, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	_, err := s.attendanceRepo.GetOpenForUser(ctx, userCtx.UserID)
	if err == nil {
		return nil, ErrAlreadyCheckedIn
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record := &domain.AttendanceRecord{
		UserID:      userCtx.UserID,
		UserName:    userCtx.Name,
		ProjectID:   req.ProjectID,
		CheckInTime: time.Now(),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Accuracy:    req.Accuracy,
	}

	if err := s.attendanceRepo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create attendance record", zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditAttendanceCheckIn, record.ID.String(), "")

	return record, nil
}

// CheckOut closes the user's open attendance record
func (s *AttendanceService) CheckOut(ctx context.Context) (*domain.AttendanceRecord, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	record, err := s.attendanceRepo.GetOpenForUser(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, err
	}

	now := time.Now()
	record.CheckOutTime = &now
	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditAttendanceCheckOut, record.ID.String(), "")

	return record, nil
}

// ListByProject returns attendance for a project in a date window
func (s *AttendanceService) ListByProject(ctx context.Context, projectID uuid.UUID, from, to time.Time) ([]domain.AttendanceRecord, error) {
	return s.attendanceRepo.ListByProject(ctx, projectID, from, to)
}

// MyRecent returns the authenticated user's latest records
func (s *AttendanceService) MyRecent(ctx context.Context, limit int) ([]domain.AttendanceRecord, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	return s.attendanceRepo.ListByUser(ctx, userCtx.UserID, limit)
}
