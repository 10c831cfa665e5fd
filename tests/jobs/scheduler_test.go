package jobs_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubInvoiceService struct {
	listCalls int
}

func (s *stubInvoiceService) ListIssued(ctx context.Context) ([]domain.Invoice, error) {
	s.listCalls++
	return nil, nil
}

func (s *stubInvoiceService) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return nil, nil
}

func TestScheduler_AddRemoveJob(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())

	err := scheduler.AddJob("test_job", "0 */15 * * * *", func() {})
	require.NoError(t, err)
	assert.Contains(t, scheduler.GetJobNames(), "test_job")

	// Duplicate names are rejected
	err = scheduler.AddJob("test_job", "0 */15 * * * *", func() {})
	assert.Error(t, err)

	require.NoError(t, scheduler.RemoveJob("test_job"))
	assert.NotContains(t, scheduler.GetJobNames(), "test_job")

	assert.Error(t, scheduler.RemoveJob("never_registered"))
}

func TestScheduler_RejectsBadCronExpression(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())

	err := scheduler.AddJob("bad", "not a cron expr", func() {})
	assert.Error(t, err)
}

func TestRegisterPaymentSyncJob(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())

	err := jobs.RegisterPaymentSyncJob(scheduler, &stubInvoiceService{}, nil, zap.NewNop(), "0 */15 * * * *", 0)
	require.NoError(t, err)
	assert.Contains(t, scheduler.GetJobNames(), jobs.PaymentSyncJobName)
}

func TestPaymentSyncJob_SkipsWithoutERP(t *testing.T) {
	svc := &stubInvoiceService{}
	job := jobs.NewPaymentSyncJob(svc, nil, zap.NewNop(), 0)

	// A nil ERP client reports disabled; the run must return without
	// touching the invoice service.
	job.Run()
	assert.Zero(t, svc.listCalls)
}
