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

type MaterialHandler struct {
	materialService *service.MaterialService
	logger          *zap.Logger
}

func NewMaterialHandler(materialService *service.MaterialService, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		logger:          logger,
	}
}

// @Summary List material requests
// @Description List material requests with optional filters
// @Tags Materials
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Param projectId query string false "Filter by project ID"
// @Param status query string false "Filter by status (REQUESTED, APPROVED, REJECTED, DELIVERED)"
// @Success 200 {object} domain.ListResponse[domain.MaterialRequest]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials [get]
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)

	if pid := r.URL.Query().Get("projectId"); pid != "" {
		projectID, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'projectId' must be a valid UUID")
			return
		}
		materials, err := h.materialService.ListByProject(r.Context(), projectID)
		if err != nil {
			h.logger.Error("failed to list material requests", zap.Error(err), zap.String("project_id", projectID.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to list material requests")
			return
		}
		respondJSON(w, http.StatusOK, domain.ListResponse[domain.MaterialRequest]{
			Data: materials,
			Meta: domain.ListMeta{Total: int64(len(materials)), Limit: limit, Offset: 0},
		})
		return
	}

	var status *domain.MaterialStatus
	if s := r.URL.Query().Get("status"); s != "" {
		ms := domain.MaterialStatus(s)
		if !ms.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid material status filter")
			return
		}
		status = &ms
	}

	materials, total, err := h.materialService.List(r.Context(), limit, offset, status)
	if err != nil {
		h.logger.Error("failed to list material requests", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list material requests")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.MaterialRequest]{
		Data: materials,
		Meta: domain.ListMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// @Summary Create material request
// @Description Raise a new material request for a project
// @Tags Materials
// @Accept json
// @Produce json
// @Param request body domain.CreateMaterialRequestRequest true "Request data"
// @Success 201 {object} domain.MaterialRequest
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials [post]
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMaterialRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	material, err := h.materialService.Create(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create material request", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create material request")
		return
	}

	w.Header().Set("Location", "/api/v1/materials/"+material.ID.String())
	respondJSON(w, http.StatusCreated, material)
}

// @Summary Get material request
// @Description Get a material request by ID
// @Tags Materials
// @Produce json
// @Param id path string true "Material request ID"
// @Success 200 {object} domain.MaterialRequest
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id} [get]
func (h *MaterialHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material request ID: must be a valid UUID")
		return
	}

	material, err := h.materialService.GetByID(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get material request", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get material request")
		return
	}

	respondJSON(w, http.StatusOK, material)
}

// @Summary Approve material request
// @Description Approve a requested material
// @Tags Materials
// @Produce json
// @Param id path string true "Material request ID"
// @Success 200 {object} domain.MaterialRequest
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id}/approve [post]
func (h *MaterialHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.materialService.Approve, "approve")
}

// @Summary Reject material request
// @Description Reject a requested material
// @Tags Materials
// @Produce json
// @Param id path string true "Material request ID"
// @Success 200 {object} domain.MaterialRequest
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id}/reject [post]
func (h *MaterialHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.materialService.Reject, "reject")
}

// @Summary Mark material delivered
// @Description Mark an approved material as delivered on site
// @Tags Materials
// @Produce json
// @Param id path string true "Material request ID"
// @Success 200 {object} domain.MaterialRequest
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id}/deliver [post]
func (h *MaterialHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.materialService.MarkDelivered, "deliver")
}

func (h *MaterialHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id uuid.UUID) (*domain.MaterialRequest, error),
	verb string,
) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material request ID: must be a valid UUID")
		return
	}

	material, err := fn(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to "+verb+" material request", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to "+verb+" material request")
		return
	}

	respondJSON(w, http.StatusOK, material)
}

// @Summary Record material usage
// @Description Record the consumed quantity against an approved material request
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material request ID"
// @Param request body domain.UpdateMaterialUsageRequest true "Used quantity"
// @Success 200 {object} domain.MaterialRequest
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id}/usage [put]
func (h *MaterialHandler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material request ID: must be a valid UUID")
		return
	}

	var req domain.UpdateMaterialUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	material, err := h.materialService.RecordUsage(r.Context(), id, req.UsedQuantity)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to record material usage", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to record material usage")
		return
	}

	respondJSON(w, http.StatusOK, material)
}
