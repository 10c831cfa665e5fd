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

func newMaterialService(db *gorm.DB) *service.MaterialService {
	logger := zap.NewNop()
	auditTrail := service.NewAuditTrailService(repository.NewAuditRepository(db), logger)
	return service.NewMaterialService(repository.NewMaterialRequestRepository(db), auditTrail, logger)
}

func TestMaterialService_Create(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newMaterialService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	ctx := testutil.ContextWithUser("Asha Rao", domain.RoleSupervisor)

	request, err := svc.Create(ctx, &domain.CreateMaterialRequestRequest{
		ProjectID: project.ID,
		ItemName:  "Cement",
		Quantity:  200,
		Unit:      "bags",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.MaterialStatusRequested, request.Status)
	assert.Equal(t, "Asha Rao", request.RequestedBy)
	assert.Zero(t, request.UsedQuantity)
}

func TestMaterialService_Create_DuplicateItemName(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newMaterialService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	testutil.CreateTestMaterialRequest(t, db, project.ID, "Cement", 100, domain.MaterialStatusRequested)

	_, err := svc.Create(context.Background(), &domain.CreateMaterialRequestRequest{
		ProjectID: project.ID,
		ItemName:  "Cement",
		Quantity:  50,
	})

	assert.ErrorIs(t, err, service.ErrDuplicateItemName)
}

func TestMaterialService_Create_SameItemOtherProject(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newMaterialService(db)
	projectA := testutil.CreateTestProject(t, db, "Riverside Apartments")
	projectB := testutil.CreateTestProject(t, db, "Skyline Towers")
	testutil.CreateTestMaterialRequest(t, db, projectA.ID, "Cement", 100, domain.MaterialStatusRequested)

	_, err := svc.Create(context.Background(), &domain.CreateMaterialRequestRequest{
		ProjectID: projectB.ID,
		ItemName:  "Cement",
		Quantity:  50,
	})

	assert.NoError(t, err)
}

func TestMaterialService_Lifecycle(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newMaterialService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	request := testutil.CreateTestMaterialRequest(t, db, project.ID, "Steel", 500, domain.MaterialStatusRequested)
	ctx := context.Background()

	approved, err := svc.Approve(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaterialStatusApproved, approved.Status)

	delivered, err := svc.MarkDelivered(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaterialStatusDelivered, delivered.Status)

	// Delivered is terminal
	_, err = svc.Approve(ctx, request.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestMaterialService_DeliverWithoutApproval(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newMaterialService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	request := testutil.CreateTestMaterialRequest(t, db, project.ID, "Steel", 500, domain.MaterialStatusRequested)

	_, err := svc.MarkDelivered(context.Background(), request.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestMaterialService_RejectedIsTerminal(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newMaterialService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	request := testutil.CreateTestMaterialRequest(t, db, project.ID, "Steel", 500, domain.MaterialStatusRequested)
	ctx := context.Background()

	_, err := svc.Reject(ctx, request.ID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, request.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = svc.MarkDelivered(ctx, request.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestMaterialService_RecordUsage(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newMaterialService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	request := testutil.CreateTestMaterialRequest(t, db, project.ID, "Sand", 50, domain.MaterialStatusDelivered)

	updated, err := svc.RecordUsage(context.Background(), request.ID, 32.5)
	require.NoError(t, err)
	assert.InDelta(t, 32.5, updated.UsedQuantity, 0.001)
}
