package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"github.com/nirmaanhq/siteops-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newDashboardService(db *gorm.DB) *service.DashboardService {
	return service.NewDashboardService(
		repository.NewProjectRepository(db),
		repository.NewTaskRepository(db),
		repository.NewDPRRepository(db),
		repository.NewMaterialRequestRepository(db),
		repository.NewInvoiceRepository(db),
		zap.NewNop(),
	)
}

func TestDashboardService_Metrics(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDashboardService(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")

	// One open task past its due date, one completed
	testutil.CreateTestTask(t, db, project.ID, "Overdue work", domain.TaskStatusInProgress, time.Now().AddDate(0, 0, -2))
	testutil.CreateTestTask(t, db, project.ID, "Done work", domain.TaskStatusCompleted, time.Now().AddDate(0, 0, -2))
	testutil.CreateTestMaterialRequest(t, db, project.ID, "Cement", 100, domain.MaterialStatusRequested)

	metrics, err := svc.Metrics(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, metrics.ActiveProjects)
	assert.EqualValues(t, 1, metrics.OpenTasks)
	assert.EqualValues(t, 1, metrics.PendingMaterials)
	assert.Equal(t, 1, metrics.DelayedTasks)
	assert.Zero(t, metrics.PendingDPRs)
	assert.Zero(t, metrics.OutstandingBilling)
}

func TestDashboardService_Metrics_EmptyDatabase(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDashboardService(db)

	metrics, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, metrics.ActiveProjects)
	assert.Zero(t, metrics.OpenTasks)
	assert.Zero(t, metrics.DelayedTasks)
}
