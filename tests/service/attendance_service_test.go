package service_test

import (
	"context"
	"testing"

	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"github.com/nirmaanhq/siteops-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAttendanceService(db *gorm.DB) *service.AttendanceService {
	logger := zap.NewNop()
	auditTrail := service.NewAuditTrailService(repository.NewAuditRepository(db), logger)
	return service.NewAttendanceService(repository.NewAttendanceRepository(db), auditTrail, logger)
}

func TestAttendanceService_CheckInCheckOut(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newAttendanceService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	ctx := testutil.ContextWithUser("Ravi Kumar", domain.RoleWorker)

	record, err := svc.CheckIn(ctx, &domain.CheckInRequest{
		ProjectID: project.ID,
		Latitude:  19.076,
		Longitude: 72.877,
		Accuracy:  8,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", record.UserName)
	assert.Nil(t, record.CheckOutTime)

	closed, err := svc.CheckOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, record.ID, closed.ID)
	require.NotNil(t, closed.CheckOutTime)
	assert.False(t, closed.CheckOutTime.Before(closed.CheckInTime))
}

func TestAttendanceService_DoubleCheckIn(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newAttendanceService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	ctx := testutil.ContextWithUser("Ravi Kumar", domain.RoleWorker)

	_, err := svc.CheckIn(ctx, &domain.CheckInRequest{ProjectID: project.ID})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, &domain.CheckInRequest{ProjectID: project.ID})
	assert.ErrorIs(t, err, service.ErrAlreadyCheckedIn)
}

func TestAttendanceService_CheckOutWithoutCheckIn(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newAttendanceService(db)
	ctx := testutil.ContextWithUser("Ravi Kumar", domain.RoleWorker)

	_, err := svc.CheckOut(ctx)
	assert.ErrorIs(t, err, service.ErrNotCheckedIn)
}

func TestAttendanceService_RequiresAuthentication(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newAttendanceService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")

	_, err := svc.CheckIn(context.Background(), &domain.CheckInRequest{ProjectID: project.ID})
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = svc.CheckOut(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAttendanceService_MyRecent(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newAttendanceService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	ctx := testutil.ContextWithUser("Ravi Kumar", domain.RoleWorker)

	_, err := svc.CheckIn(ctx, &domain.CheckInRequest{ProjectID: project.ID})
	require.NoError(t, err)
	_, err = svc.CheckOut(ctx)
	require.NoError(t, err)

	records, err := svc.MyRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Another user sees nothing
	other := testutil.ContextWithUser("Asha Rao", domain.RoleWorker)
	records, err = svc.MyRecent(other, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
