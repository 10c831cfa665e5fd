package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"github.com/nirmaanhq/siteops-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createTestUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:   "Ravi Kumar",
		Email:  email,
		Role:   domain.RoleWorker,
		Status: domain.UserStatusPending,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUserService_SetRole(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := service.NewUserService(repository.NewUserRepository(db), zap.NewNop())
	user := createTestUser(t, db, "ravi@example.com")

	updated, err := svc.SetRole(context.Background(), user.ID, domain.RoleSupervisor)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupervisor, updated.Role)

	_, err = svc.SetRole(context.Background(), user.ID, domain.Role("SUPERUSER"))
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.SetRole(context.Background(), uuid.New(), domain.RoleManager)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUserService_Activate(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := service.NewUserService(repository.NewUserRepository(db), zap.NewNop())
	user := createTestUser(t, db, "ravi@example.com")

	activated, err := svc.Activate(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, activated.Status)

	var stored domain.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, domain.UserStatusActive, stored.Status)
}
