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

func newAuditTrailService(db *gorm.DB) *service.AuditTrailService {
	return service.NewAuditTrailService(repository.NewAuditRepository(db), zap.NewNop())
}

func TestAuditTrailService_RecordWithUser(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newAuditTrailService(db)
	ctx := testutil.ContextWithUser("Asha Rao", domain.RoleSupervisor)

	err := svc.Record(ctx, domain.AuditDPRApproved, "target-1", "looks good")
	require.NoError(t, err)

	var entry domain.AuditEntry
	require.NoError(t, db.First(&entry, "target_id = ?", "target-1").Error)
	assert.Equal(t, domain.AuditDPRApproved, entry.Action)
	assert.Equal(t, "Asha Rao", entry.PerformedBy)
	assert.Equal(t, domain.RoleSupervisor, entry.Role)
	assert.Equal(t, "looks good", entry.Remarks)
	assert.Positive(t, entry.ID)
}

func TestAuditTrailService_RecordWithoutUserIsSystem(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newAuditTrailService(db)

	err := svc.Record(context.Background(), domain.AuditInvoiceStatusPaid, "target-2", "")
	require.NoError(t, err)

	var entry domain.AuditEntry
	require.NoError(t, db.First(&entry, "target_id = ?", "target-2").Error)
	assert.Equal(t, "system", entry.PerformedBy)
	assert.Equal(t, domain.RoleAdmin, entry.Role)
}

func TestAuditTrailService_IDsStrictlyIncreasing(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newAuditTrailService(db)
	ctx := context.Background()

	// Record rapidly so some calls land within the same clock tick
	for i := 0; i < 50; i++ {
		require.NoError(t, svc.Record(ctx, domain.AuditTaskCreated, "burst", ""))
	}

	var entries []domain.AuditEntry
	require.NoError(t, db.Where("target_id = ?", "burst").Order("id asc").Find(&entries).Error)
	require.Len(t, entries, 50)

	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].ID, entries[i-1].ID)
	}
}

func TestAuditTrailService_GetByTargetOldestFirst(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newAuditTrailService(db)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, domain.AuditTaskCreated, "task-9", ""))
	require.NoError(t, svc.Record(ctx, domain.AuditTaskStatusInProgress, "task-9", ""))
	require.NoError(t, svc.Record(ctx, domain.AuditTaskStatusCompleted, "task-9", ""))
	require.NoError(t, svc.Record(ctx, domain.AuditDPRSubmitted, "other", ""))

	history, err := svc.GetByTarget(ctx, "task-9")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.AuditTaskCreated, history[0].Action)
	assert.Equal(t, domain.AuditTaskStatusInProgress, history[1].Action)
	assert.Equal(t, domain.AuditTaskStatusCompleted, history[2].Action)
}

func TestAuditTrailService_ListFilters(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newAuditTrailService(db)
	ctx := testutil.ContextWithUser("Meera Shah", domain.RoleManager)

	require.NoError(t, svc.Record(ctx, domain.AuditInvoiceCreated, "inv-1", ""))
	require.NoError(t, svc.Record(ctx, domain.AuditInvoiceStatusIssued, "inv-1", ""))
	require.NoError(t, svc.Record(context.Background(), domain.AuditInvoiceCreated, "inv-2", ""))

	byAction, total, err := svc.List(ctx, service.AuditQueryParams{Action: domain.AuditInvoiceCreated})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, byAction, 2)

	byActor, total, err := svc.List(ctx, service.AuditQueryParams{PerformedBy: "Meera Shah"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, byActor, 2)

	byTarget, total, err := svc.List(ctx, service.AuditQueryParams{TargetID: "inv-2"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byTarget, 1)
	assert.Equal(t, "system", byTarget[0].PerformedBy)
}
