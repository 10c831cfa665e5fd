package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create persists the invoice together with its line items
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Supplier").
		Preload("Recipient").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByNumber(ctx context.Context, invoiceNumber string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("invoice_number = ?", invoiceNumber).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *InvoiceRepository) List(ctx context.Context, limit, offset int, projectID *uuid.UUID, status *domain.InvoiceStatus) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Invoice{})
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Offset(offset).Limit(limit).
		Order("invoice_date DESC").
		Find(&invoices).Error
	return invoices, total, err
}

// ListByStatus returns all invoices in the given status, used by the
// payment sync job to find issued invoices awaiting reconciliation.
func (r *InvoiceRepository) ListByStatus(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Find(&invoices).Error
	return invoices, err
}

// SumOutstanding totals the net payable of issued, unpaid invoices
func (r *InvoiceRepository) SumOutstanding(ctx context.Context) (float64, error) {
	var sum *float64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("status = ?", domain.InvoiceStatusIssued).
		Select("SUM(total_amount)").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}
