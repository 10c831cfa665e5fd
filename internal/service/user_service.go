package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService handles user account operations
type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// GetByID returns a single user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns all users
func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.userRepo.List(ctx, limit, offset)
}

// SetRole changes a user's role. Only admins and owners reach this path.
func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user role", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}

	return user, nil
}

// Activate approves a pending account
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user.Status = domain.UserStatusActive
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
