package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"github.com/nirmaanhq/siteops-api/internal/storage"
	"github.com/nirmaanhq/siteops-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newDPRService(t *testing.T, db *gorm.DB) *service.DPRService {
	t.Helper()
	logger := zap.NewNop()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	auditTrail := service.NewAuditTrailService(repository.NewAuditRepository(db), logger)
	return service.NewDPRService(
		db,
		repository.NewDPRRepository(db),
		repository.NewTaskRepository(db),
		repository.NewMaterialRequestRepository(db),
		auditTrail,
		store,
		logger,
	)
}

func TestDPRService_Submit(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDPRService(t, db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	task := testutil.CreateTestTask(t, db, project.ID, "Pour slab", domain.TaskStatusInProgress, time.Now().AddDate(0, 0, 7))
	request := testutil.CreateTestMaterialRequest(t, db, project.ID, "Cement", 100, domain.MaterialStatusDelivered)
	ctx := testutil.ContextWithUser("Ravi Kumar", domain.RoleWorker)

	dpr, err := svc.Submit(ctx, &domain.SubmitDPRRequest{
		ProjectID:        project.ID,
		ReportDate:       "2026-08-14",
		Description:      "Slab poured for block A",
		Weather:          "Clear",
		WorkforceCount:   24,
		CompletedTaskIDs: []uuid.UUID{task.ID},
		MaterialsUsed: []domain.DPRMaterialUsageInput{
			{ItemName: "Cement", QuantityUsed: 40},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalStatusPending, dpr.ApprovalStatus)
	assert.Equal(t, "Ravi Kumar", dpr.SubmittedBy)
	assert.False(t, dpr.LeakageAlert)

	// The referenced task is frozen awaiting review
	var storedTask domain.Task
	require.NoError(t, db.First(&storedTask, "id = ?", task.ID).Error)
	assert.Equal(t, domain.TaskStatusPendingApproval, storedTask.Status)
	require.NotNil(t, storedTask.RelatedDPRID)
	assert.Equal(t, dpr.ID, *storedTask.RelatedDPRID)

	// Consumption is booked against the matching request
	var storedRequest domain.MaterialRequest
	require.NoError(t, db.First(&storedRequest, "id = ?", request.ID).Error)
	assert.InDelta(t, 40, storedRequest.UsedQuantity, 0.001)
}

func TestDPRService_Submit_PersistsLeakage(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDPRService(t, db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	testutil.CreateTestMaterialRequest(t, db, project.ID, "Cement", 100, domain.MaterialStatusDelivered)

	dpr, err := svc.Submit(context.Background(), &domain.SubmitDPRRequest{
		ProjectID:   project.ID,
		ReportDate:  "2026-08-14",
		Description: "Heavy cement consumption",
		MaterialsUsed: []domain.DPRMaterialUsageInput{
			{ItemName: "Cement", QuantityUsed: 130},
		},
	})
	require.NoError(t, err)

	assert.True(t, dpr.LeakageAlert)
	assert.Equal(t, "30% above request", dpr.LeakageExcess)

	var stored domain.DPR
	require.NoError(t, db.First(&stored, "id = ?", dpr.ID).Error)
	assert.True(t, stored.LeakageAlert)
	assert.Equal(t, "30% above request", stored.LeakageExcess)
}

func TestDPRService_Submit_CompletedTaskRollsBack(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDPRService(t, db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	good := testutil.CreateTestTask(t, db, project.ID, "Pour slab", domain.TaskStatusInProgress, time.Now().AddDate(0, 0, 7))
	done := testutil.CreateTestTask(t, db, project.ID, "Excavation", domain.TaskStatusCompleted, time.Now().AddDate(0, 0, -7))

	_, err := svc.Submit(context.Background(), &domain.SubmitDPRRequest{
		ProjectID:        project.ID,
		ReportDate:       "2026-08-14",
		Description:      "Invalid submission",
		CompletedTaskIDs: []uuid.UUID{good.ID, done.ID},
	})
	require.ErrorIs(t, err, service.ErrInvalidTransition)

	// Nothing moved: no report row, no task touched
	var count int64
	require.NoError(t, db.Model(&domain.DPR{}).Count(&count).Error)
	assert.Zero(t, count)

	var storedGood domain.Task
	require.NoError(t, db.First(&storedGood, "id = ?", good.ID).Error)
	assert.Equal(t, domain.TaskStatusInProgress, storedGood.Status)
	assert.Nil(t, storedGood.RelatedDPRID)
}

func TestDPRService_Submit_TaskFromOtherProjectRejected(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDPRService(t, db)
	projectA := testutil.CreateTestProject(t, db, "Riverside Apartments")
	projectB := testutil.CreateTestProject(t, db, "Skyline Towers")
	foreign := testutil.CreateTestTask(t, db, projectB.ID, "Unrelated task", domain.TaskStatusInProgress, time.Now().AddDate(0, 0, 7))

	_, err := svc.Submit(context.Background(), &domain.SubmitDPRRequest{
		ProjectID:        projectA.ID,
		ReportDate:       "2026-08-14",
		Description:      "Cross-project reference",
		CompletedTaskIDs: []uuid.UUID{foreign.ID},
	})

	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestDPRService_Approve(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDPRService(t, db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	task := testutil.CreateTestTask(t, db, project.ID, "Pour slab", domain.TaskStatusInProgress, time.Now().AddDate(0, 0, 7))

	dpr, err := svc.Submit(context.Background(), &domain.SubmitDPRRequest{
		ProjectID:        project.ID,
		ReportDate:       "2026-08-14",
		Description:      "Slab poured",
		CompletedTaskIDs: []uuid.UUID{task.ID},
	})
	require.NoError(t, err)

	ctx := testutil.ContextWithUser("Asha Rao", domain.RoleSupervisor)
	approved, err := svc.Approve(ctx, dpr.ID, "Good progress")
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalStatusApproved, approved.ApprovalStatus)
	assert.Equal(t, "Good progress", approved.ApproverRemarks)
	assert.NotNil(t, approved.ApproverID)

	var storedTask domain.Task
	require.NoError(t, db.First(&storedTask, "id = ?", task.ID).Error)
	assert.Equal(t, domain.TaskStatusCompleted, storedTask.Status)
	assert.Equal(t, "Good progress", storedTask.Remarks)
	assert.NotNil(t, storedTask.CompletedAt)
}

func TestDPRService_Reject(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDPRService(t, db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	task := testutil.CreateTestTask(t, db, project.ID, "Pour slab", domain.TaskStatusInProgress, time.Now().AddDate(0, 0, 7))

	dpr, err := svc.Submit(context.Background(), &domain.SubmitDPRRequest{
		ProjectID:        project.ID,
		ReportDate:       "2026-08-14",
		Description:      "Slab poured",
		CompletedTaskIDs: []uuid.UUID{task.ID},
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), dpr.ID, "Honeycombing on column C4")
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalStatusRejected, rejected.ApprovalStatus)

	var storedTask domain.Task
	require.NoError(t, db.First(&storedTask, "id = ?", task.ID).Error)
	assert.Equal(t, domain.TaskStatusRejected, storedTask.Status)
	assert.Equal(t, "Honeycombing on column C4", storedTask.Remarks)
	assert.Nil(t, storedTask.CompletedAt)
}

func TestDPRService_ReviewTwice(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDPRService(t, db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")

	dpr, err := svc.Submit(context.Background(), &domain.SubmitDPRRequest{
		ProjectID:   project.ID,
		ReportDate:  "2026-08-14",
		Description: "No task references",
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), dpr.ID, "")
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), dpr.ID, "changed my mind")
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = svc.Approve(context.Background(), dpr.ID, "again")
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}
