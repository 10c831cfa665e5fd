package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// @Summary List invoices
// @Description List invoices with optional filters
// @Tags Invoices
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Param projectId query string false "Filter by project ID"
// @Param status query string false "Filter by status (Draft, Issued, Paid)"
// @Success 200 {object} domain.ListResponse[domain.Invoice]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)

	var projectID *uuid.UUID
	if pid := r.URL.Query().Get("projectId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'projectId' must be a valid UUID")
			return
		}
		projectID = &id
	}

	var status *domain.InvoiceStatus
	if s := r.URL.Query().Get("status"); s != "" {
		is := domain.InvoiceStatus(s)
		if !is.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid invoice status filter")
			return
		}
		status = &is
	}

	invoices, total, err := h.invoiceService.List(r.Context(), limit, offset, projectID, status)
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list invoices")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.Invoice]{
		Data: invoices,
		Meta: domain.ListMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// @Summary Create invoice
// @Description Create a running account invoice. Tax amounts and the payable total are computed server-side from the priced line items.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body domain.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} domain.Invoice
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create invoice", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	w.Header().Set("Location", "/api/v1/invoices/"+invoice.ID.String())
	respondJSON(w, http.StatusCreated, invoice)
}

// @Summary Get invoice
// @Description Get an invoice by ID with its line items and parties
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	invoice, err := h.invoiceService.GetByID(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get invoice", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// @Summary Issue invoice
// @Description Move a draft invoice to issued
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.invoiceService.Issue, "issue")
}

// @Summary Mark invoice paid
// @Description Move an issued invoice to paid
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.invoiceService.MarkPaid, "pay")
}

func (h *InvoiceHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id uuid.UUID) (*domain.Invoice, error),
	verb string,
) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	invoice, err := fn(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to "+verb+" invoice", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to "+verb+" invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}
