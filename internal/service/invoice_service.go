package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/billing"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceService handles RA bill creation and lifecycle. All tax amounts are
// computed server-side from the pricing inputs; nothing derived is accepted
// from the caller.
type InvoiceService struct {
	invoiceRepo  *repository.InvoiceRepository
	projectRepo  *repository.ProjectRepository
	partyRepo    *repository.PartyRepository
	sequenceRepo *repository.NumberSequenceRepository
	auditTrail   *AuditTrailService
	logger       *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	projectRepo *repository.ProjectRepository,
	partyRepo *repository.PartyRepository,
	sequenceRepo *repository.NumberSequenceRepository,
	auditTrail *AuditTrailService,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		projectRepo:  projectRepo,
		partyRepo:    partyRepo,
		sequenceRepo: sequenceRepo,
		auditTrail:   auditTrail,
		logger:       logger,
	}
}

// Create builds a draft invoice. Inter-state supply is judged from the two
// parties' registered state codes; the project's retention percentage is
// applied to the gross total.
func (s *InvoiceService) Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	invoiceDate, err := domain.ParseDate(req.InvoiceDate)
	if err != nil {
		return nil, ErrInvalidInput
	}

	project, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	supplier, err := s.partyRepo.GetByID(ctx, req.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	recipient, err := s.partyRepo.GetByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	interState := billing.IsInterState(supplier.StateCode, recipient.StateCode)

	items := make([]domain.InvoiceLineItem, 0, len(req.Items))
	for i, input := range req.Items {
		if project.GSTRequired && !billing.IsValidGSTRate(input.GSTRate) {
			return nil, ErrInvalidGSTRate
		}

		amounts := billing.CalculateLineItem(input.Quantity, input.Rate, input.GSTRate, interState)
		items = append(items, domain.InvoiceLineItem{
			Position:      i,
			Description:   input.Description,
			HSNCode:       input.HSNCode,
			Quantity:      input.Quantity,
			Unit:          input.Unit,
			Rate:          input.Rate,
			GSTRate:       input.GSTRate,
			TaxableAmount: amounts.TaxableAmount,
			CGST:          amounts.CGST,
			SGST:          amounts.SGST,
			IGST:          amounts.IGST,
			Total:         amounts.Total,
		})
	}

	summary := billing.SummarizeInvoice(items, project.RetentionPercent, req.AdvanceAdjustment)

	number, err := s.nextInvoiceNumber(ctx, project.ID, invoiceDate.Year())
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		ProjectID:         project.ID,
		InvoiceNumber:     number,
		InvoiceDate:       invoiceDate,
		SupplierID:        supplier.ID,
		RecipientID:       recipient.ID,
		PlaceOfSupply:     recipient.StateCode,
		InterState:        interState,
		Status:            domain.InvoiceStatusDraft,
		TotalTaxable:      summary.TotalTaxable,
		TotalCGST:         summary.TotalCGST,
		TotalSGST:         summary.TotalSGST,
		TotalIGST:         summary.TotalIGST,
		GrossTotal:        summary.GrossTotal,
		RetentionAmount:   summary.RetentionAmount,
		AdvanceAdjustment: summary.AdvanceAdjustment,
		TotalAmount:       summary.TotalAmount,
		Items:             items,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		s.logger.Error("failed to create invoice", zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditInvoiceCreated, invoice.ID.String(), invoice.InvoiceNumber)

	return invoice, nil
}

// nextInvoiceNumber produces the next RA bill number for a project/year,
// e.g. RA-2026-007.
func (s *InvoiceService) nextInvoiceNumber(ctx context.Context, projectID uuid.UUID, year int) (string, error) {
	seq, err := s.sequenceRepo.GetNextNumber(ctx, projectID, year)
	if err != nil {
		return "", fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return fmt.Sprintf("RA-%d-%03d", year, seq), nil
}

// GetByID returns a single invoice with line items and parties
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return invoice, nil
}

// List returns invoices filtered by project and status
func (s *InvoiceService) List(ctx context.Context, limit, offset int, projectID *uuid.UUID, status *domain.InvoiceStatus) ([]domain.Invoice, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.invoiceRepo.List(ctx, limit, offset, projectID, status)
}

// ListIssued returns every issued invoice. Used by the payment sync job to
// build the reconciliation set.
func (s *InvoiceService) ListIssued(ctx context.Context) ([]domain.Invoice, error) {
	return s.invoiceRepo.ListByStatus(ctx, domain.InvoiceStatusIssued)
}

// Issue moves a draft invoice to Issued
func (s *InvoiceService) Issue(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.transition(ctx, id, domain.InvoiceStatusDraft, domain.InvoiceStatusIssued, domain.AuditInvoiceStatusIssued)
}

// MarkPaid moves an issued invoice to Paid. Also used by the payment sync
// job when the accounting warehouse reports a settlement.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.transition(ctx, id, domain.InvoiceStatusIssued, domain.InvoiceStatusPaid, domain.AuditInvoiceStatusPaid)
}

func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, from, to domain.InvoiceStatus, auditAction string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if invoice.Status != from {
		return nil, ErrInvalidTransition
	}

	invoice.Status = to
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		s.logger.Error("failed to update invoice status",
			zap.String("invoice_id", id.String()),
			zap.String("status", string(to)),
			zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, auditAction, invoice.ID.String(), invoice.InvoiceNumber)

	return invoice, nil
}
