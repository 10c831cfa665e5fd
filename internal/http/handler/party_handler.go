package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"go.uber.org/zap"
)

type PartyHandler struct {
	partyService *service.PartyService
	logger       *zap.Logger
}

func NewPartyHandler(partyService *service.PartyService, logger *zap.Logger) *PartyHandler {
	return &PartyHandler{
		partyService: partyService,
		logger:       logger,
	}
}

// @Summary List parties
// @Description List billing parties with optional type filter
// @Tags Parties
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Param type query string false "Filter by type (Client, Contractor)"
// @Success 200 {object} domain.ListResponse[domain.Party]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parties [get]
func (h *PartyHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)

	var partyType *domain.PartyType
	if t := r.URL.Query().Get("type"); t != "" {
		pt := domain.PartyType(t)
		if !pt.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid party type filter")
			return
		}
		partyType = &pt
	}

	parties, total, err := h.partyService.List(r.Context(), limit, offset, partyType)
	if err != nil {
		h.logger.Error("failed to list parties", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list parties")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.Party]{
		Data: parties,
		Meta: domain.ListMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// @Summary Create party
// @Description Register a billing party. The GSTIN, when provided, must be structurally valid.
// @Tags Parties
// @Accept json
// @Produce json
// @Param request body domain.CreatePartyRequest true "Party data"
// @Success 201 {object} domain.Party
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parties [post]
func (h *PartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	party, err := h.partyService.Create(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create party", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create party")
		return
	}

	w.Header().Set("Location", "/api/v1/parties/"+party.ID.String())
	respondJSON(w, http.StatusCreated, party)
}

// @Summary Get party
// @Description Get a party by ID
// @Tags Parties
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} domain.Party
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parties/{id} [get]
func (h *PartyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid party ID: must be a valid UUID")
		return
	}

	party, err := h.partyService.GetByID(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get party", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get party")
		return
	}

	respondJSON(w, http.StatusOK, party)
}

// @Summary Update party
// @Description Update party details
// @Tags Parties
// @Accept json
// @Produce json
// @Param id path string true "Party ID"
// @Param request body domain.UpdatePartyRequest true "Fields to update"
// @Success 200 {object} domain.Party
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parties/{id} [put]
func (h *PartyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid party ID: must be a valid UUID")
		return
	}

	var req domain.UpdatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	party, err := h.partyService.Update(r.Context(), id, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to update party", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to update party")
		return
	}

	respondJSON(w, http.StatusOK, party)
}
