package service_test

import (
	"context"
	"testing"
	"time"

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

func newTaskService(db *gorm.DB) *service.TaskService {
	logger := zap.NewNop()
	auditTrail := service.NewAuditTrailService(repository.NewAuditRepository(db), logger)
	return service.NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewMaterialRequestRepository(db),
		auditTrail,
		logger,
	)
}

func TestTaskService_Create(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newTaskService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	ctx := context.Background()

	dto, err := svc.Create(ctx, &domain.CreateTaskRequest{
		ProjectID:  project.ID,
		Title:      "Excavate foundation",
		AssignedTo: "Ravi Kumar",
		DueDate:    time.Now().AddDate(0, 0, 14).Format("2006-01-02"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusPending, dto.Status)
	assert.Equal(t, "Excavate foundation", dto.Title)
	assert.False(t, dto.IsDelayed)

	var entry domain.AuditEntry
	require.NoError(t, db.Where("action = ?", domain.AuditTaskCreated).First(&entry).Error)
	assert.Equal(t, dto.ID.String(), entry.TargetID)
}

func TestTaskService_Create_BadDate(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newTaskService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")

	_, err := svc.Create(context.Background(), &domain.CreateTaskRequest{
		ProjectID: project.ID,
		Title:     "Excavate foundation",
		DueDate:   "14-08-2026",
	})

	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestTaskService_Start(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newTaskService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	task := testutil.CreateTestTask(t, db, project.ID, "Pour slab", domain.TaskStatusPending, time.Now().AddDate(0, 0, 7))

	dto, err := svc.Start(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, dto.Status)

	// Starting an already running task is not a valid transition
	_, err = svc.Start(context.Background(), task.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestTaskService_Start_NotFound(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newTaskService(db)

	_, err := svc.Start(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTaskService_Update_DoesNotTouchStatus(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newTaskService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")
	task := testutil.CreateTestTask(t, db, project.ID, "Pour slab", domain.TaskStatusInProgress, time.Now().AddDate(0, 0, 7))

	title := "Pour slab, block B"
	reason := "Shuttering rework"
	dto, err := svc.Update(context.Background(), task.ID, &domain.UpdateTaskRequest{
		Title:       &title,
		DelayReason: &reason,
	})
	require.NoError(t, err)

	assert.Equal(t, "Pour slab, block B", dto.Title)
	assert.Equal(t, domain.TaskStatusInProgress, dto.Status)
	assert.True(t, dto.IsDelayed)
	assert.Equal(t, "Shuttering rework", dto.DelayReasonShown)
}

func TestTaskService_ListByProject_AnnotatesDelays(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newTaskService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")

	overdue := testutil.CreateTestTask(t, db, project.ID, "Overdue task", domain.TaskStatusInProgress, time.Now().AddDate(0, 0, -3))
	onTime := testutil.CreateTestTask(t, db, project.ID, "Future task", domain.TaskStatusPending, time.Now().AddDate(0, 0, 10))

	dtos, err := svc.ListByProject(context.Background(), project.ID)
	require.NoError(t, err)
	require.Len(t, dtos, 2)

	byID := map[uuid.UUID]domain.TaskDTO{}
	for _, dto := range dtos {
		byID[dto.ID] = dto
	}

	assert.True(t, byID[overdue.ID].IsDelayed)
	assert.Equal(t, service.DelayReasonDeadline, byID[overdue.ID].DelayReasonShown)
	assert.False(t, byID[onTime.ID].IsDelayed)

	// An open material request flips the future task to Material Shortage
	testutil.CreateTestMaterialRequest(t, db, project.ID, "Cement", 100, domain.MaterialStatusRequested)

	dtos, err = svc.ListByProject(context.Background(), project.ID)
	require.NoError(t, err)
	for _, dto := range dtos {
		byID[dto.ID] = dto
	}
	assert.True(t, byID[onTime.ID].IsDelayed)
	assert.Equal(t, service.DelayReasonMaterial, byID[onTime.ID].DelayReasonShown)

	// The projection is never persisted
	var stored domain.Task
	require.NoError(t, db.First(&stored, "id = ?", onTime.ID).Error)
	assert.Empty(t, stored.DelayReason)
}
