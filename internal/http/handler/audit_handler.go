package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"go.uber.org/zap"
)

type AuditHandler struct {
	auditTrail *service.AuditTrailService
	logger     *zap.Logger
}

func NewAuditHandler(auditTrail *service.AuditTrailService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditTrail: auditTrail,
		logger:     logger,
	}
}

// @Summary List audit trail
// @Description List audit entries, newest first, with optional filters
// @Tags Audit
// @Produce json
// @Param limit query int false "Page size" default(100)
// @Param offset query int false "Offset" default(0)
// @Param action query string false "Filter by action"
// @Param targetId query string false "Filter by target entity ID"
// @Param performedBy query string false "Filter by actor name"
// @Success 200 {object} domain.ListResponse[domain.AuditEntry]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	params := service.AuditQueryParams{
		Action:      r.URL.Query().Get("action"),
		TargetID:    r.URL.Query().Get("targetId"),
		PerformedBy: r.URL.Query().Get("performedBy"),
		Limit:       limit,
		Offset:      offset,
	}

	entries, total, err := h.auditTrail.List(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to list audit entries", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list audit entries")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.AuditEntry]{
		Data: entries,
		Meta: domain.ListMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// @Summary Audit history for an entity
// @Description List the full audit history for one entity, oldest first
// @Tags Audit
// @Produce json
// @Param targetId path string true "Target entity ID"
// @Success 200 {array} domain.AuditEntry
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit/target/{targetId} [get]
func (h *AuditHandler) GetByTarget(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetId")
	if targetID == "" {
		respondWithError(w, http.StatusBadRequest, "Target ID is required")
		return
	}

	entries, err := h.auditTrail.GetByTarget(r.Context(), targetID)
	if err != nil {
		h.logger.Error("failed to get audit history", zap.Error(err), zap.String("target_id", targetID))
		respondWithError(w, http.StatusInternalServerError, "Failed to get audit history")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}
