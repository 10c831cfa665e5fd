package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/erp"
	"go.uber.org/zap"
)

// PaymentSyncJobName is the name of the invoice payment reconciliation job
const PaymentSyncJobName = "payment_sync"

// InvoiceBillingService defines the invoice operations the job needs.
// This interface allows the job to call the service without importing the
// service package directly.
type InvoiceBillingService interface {
	// ListIssued returns every invoice currently in the Issued state.
	ListIssued(ctx context.Context) ([]domain.Invoice, error)

	// MarkPaid moves an issued invoice to Paid.
	MarkPaid(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
}

// PaymentSyncJob reconciles issued invoices against payments recorded in
// the accounting export. Invoices with a settled payment are marked paid.
type PaymentSyncJob struct {
	invoiceService InvoiceBillingService
	erpClient      *erp.Client
	logger         *zap.Logger
	timeout        time.Duration
}

// NewPaymentSyncJob creates a new payment reconciliation job.
// The timeout controls how long one reconciliation run is allowed to take.
func NewPaymentSyncJob(invoiceService InvoiceBillingService, erpClient *erp.Client, logger *zap.Logger, timeout time.Duration) *PaymentSyncJob {
	return &PaymentSyncJob{
		invoiceService: invoiceService,
		erpClient:      erpClient,
		logger:         logger,
		timeout:        timeout,
	}
}

// Run executes one reconciliation pass.
// This is called by the scheduler according to the cron expression.
func (j *PaymentSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	if !j.erpClient.IsEnabled() {
		j.logger.Debug("payment sync skipped, ERP connection not available")
		return
	}

	issued, err := j.invoiceService.ListIssued(ctx)
	if err != nil {
		j.logger.Error("payment sync failed to list issued invoices", zap.Error(err))
		return
	}
	if len(issued) == 0 {
		return
	}

	numbers := make([]string, 0, len(issued))
	byNumber := make(map[string]domain.Invoice, len(issued))
	for _, inv := range issued {
		numbers = append(numbers, inv.InvoiceNumber)
		byNumber[inv.InvoiceNumber] = inv
	}

	payments, err := j.erpClient.SettledPayments(ctx, numbers)
	if err != nil {
		j.logger.Error("payment sync query failed",
			zap.Error(err),
			zap.Int("issued_invoices", len(issued)),
			zap.Duration("duration", time.Since(start)))
		return
	}

	var reconciled, failed int
	for _, payment := range payments {
		invoice, ok := byNumber[payment.InvoiceNumber]
		if !ok {
			continue
		}

		if _, err := j.invoiceService.MarkPaid(ctx, invoice.ID); err != nil {
			j.logger.Error("failed to mark invoice paid from payment record",
				zap.String("invoice_number", payment.InvoiceNumber),
				zap.Time("paid_on", payment.PaidOn),
				zap.Error(err))
			failed++
			continue
		}

		j.logger.Info("invoice reconciled against settled payment",
			zap.String("invoice_number", payment.InvoiceNumber),
			zap.Float64("amount", payment.Amount),
			zap.Time("paid_on", payment.PaidOn))
		reconciled++
	}

	j.logger.Info("payment sync completed",
		zap.Int("issued_invoices", len(issued)),
		zap.Int("settled_payments", len(payments)),
		zap.Int("reconciled", reconciled),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterPaymentSyncJob registers the payment reconciliation job with the
// scheduler. The cronExpr should be a valid cron expression with seconds
// field (e.g. "0 */15 * * * *" for every 15 minutes).
func RegisterPaymentSyncJob(scheduler *Scheduler, invoiceService InvoiceBillingService, erpClient *erp.Client, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewPaymentSyncJob(invoiceService, erpClient, logger, timeout)
	return scheduler.AddJob(PaymentSyncJobName, cronExpr, job.Run)
}
