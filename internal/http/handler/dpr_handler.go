package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"go.uber.org/zap"
)

// maxPhotoSize limits DPR photo uploads to 10 MB
const maxPhotoSize = 10 << 20

type DPRHandler struct {
	dprService      *service.DPRService
	insightsService *service.InsightsService
	logger          *zap.Logger
}

func NewDPRHandler(dprService *service.DPRService, insightsService *service.InsightsService, logger *zap.Logger) *DPRHandler {
	return &DPRHandler{
		dprService:      dprService,
		insightsService: insightsService,
		logger:          logger,
	}
}

// @Summary List DPRs
// @Description List daily progress reports with optional filters
// @Tags DPRs
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Param projectId query string false "Filter by project ID"
// @Param status query string false "Filter by approval status (Pending, Approved, Rejected)"
// @Success 200 {object} domain.ListResponse[domain.DPR]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dprs [get]
func (h *DPRHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)

	if pid := r.URL.Query().Get("projectId"); pid != "" {
		projectID, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'projectId' must be a valid UUID")
			return
		}
		dprs, err := h.dprService.ListByProject(r.Context(), projectID, limit)
		if err != nil {
			h.logger.Error("failed to list reports", zap.Error(err), zap.String("project_id", projectID.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to list reports")
			return
		}
		respondJSON(w, http.StatusOK, domain.ListResponse[domain.DPR]{
			Data: dprs,
			Meta: domain.ListMeta{Total: int64(len(dprs)), Limit: limit, Offset: 0},
		})
		return
	}

	var status *domain.ApprovalStatus
	if s := r.URL.Query().Get("status"); s != "" {
		as := domain.ApprovalStatus(s)
		if !as.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid approval status filter")
			return
		}
		status = &as
	}

	dprs, total, err := h.dprService.List(r.Context(), limit, offset, status)
	if err != nil {
		h.logger.Error("failed to list reports", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.DPR]{
		Data: dprs,
		Meta: domain.ListMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// @Summary Get DPR
// @Description Get a daily progress report by ID
// @Tags DPRs
// @Produce json
// @Param id path string true "DPR ID"
// @Success 200 {object} domain.DPR
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dprs/{id} [get]
func (h *DPRHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid DPR ID: must be a valid UUID")
		return
	}

	dpr, err := h.dprService.GetByID(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get report", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get report")
		return
	}

	respondJSON(w, http.StatusOK, dpr)
}

// @Summary Submit DPR
// @Description Submit a daily progress report. Referenced tasks move to pending approval and material usage is checked for leakage.
// @Tags DPRs
// @Accept json
// @Produce json
// @Param request body domain.SubmitDPRRequest true "Report data"
// @Success 201 {object} domain.DPR
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dprs [post]
func (h *DPRHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitDPRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dpr, err := h.dprService.Submit(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to submit report", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to submit report")
		return
	}

	w.Header().Set("Location", "/api/v1/dprs/"+dpr.ID.String())
	respondJSON(w, http.StatusCreated, dpr)
}

// @Summary Approve DPR
// @Description Approve a pending report; referenced tasks complete atomically
// @Tags DPRs
// @Accept json
// @Produce json
// @Param id path string true "DPR ID"
// @Param request body domain.ReviewDPRRequest false "Approver remarks"
// @Success 200 {object} domain.DPR
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dprs/{id}/approve [post]
func (h *DPRHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, true)
}

// @Summary Reject DPR
// @Description Reject a pending report; referenced tasks are marked rejected atomically
// @Tags DPRs
// @Accept json
// @Produce json
// @Param id path string true "DPR ID"
// @Param request body domain.ReviewDPRRequest false "Reviewer remarks"
// @Success 200 {object} domain.DPR
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dprs/{id}/reject [post]
func (h *DPRHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, false)
}

func (h *DPRHandler) review(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid DPR ID: must be a valid UUID")
		return
	}

	var req domain.ReviewDPRRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	var dpr *domain.DPR
	if approve {
		dpr, err = h.dprService.Approve(r.Context(), id, req.Remarks)
	} else {
		dpr, err = h.dprService.Reject(r.Context(), id, req.Remarks)
	}
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to review report", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to review report")
		return
	}

	respondJSON(w, http.StatusOK, dpr)
}

// @Summary Upload DPR photo
// @Description Attach a site photo to a report
// @Tags DPRs
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "DPR ID"
// @Param file formData file true "Photo file"
// @Success 200 {object} domain.DPR
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dprs/{id}/photo [post]
func (h *DPRHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid DPR ID: must be a valid UUID")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing 'file' form field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	dpr, err := h.dprService.AttachPhoto(r.Context(), id, header.Filename, contentType, file)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to attach photo", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to attach photo")
		return
	}

	respondJSON(w, http.StatusOK, dpr)
}

// @Summary Download DPR photo
// @Description Download the photo attached to a report
// @Tags DPRs
// @Produce octet-stream
// @Param id path string true "DPR ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dprs/{id}/photo [get]
func (h *DPRHandler) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid DPR ID: must be a valid UUID")
		return
	}

	reader, err := h.dprService.Photo(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to download photo", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to download photo")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("failed to stream photo", zap.Error(err), zap.String("id", id.String()))
	}
}

// @Summary Transcribe voice note
// @Description Transcribe a site voice note to text. Degrades to a fallback message when the transcription service is unavailable.
// @Tags DPRs
// @Accept json
// @Produce json
// @Param request body domain.TranscribeRequest true "Base64-encoded audio"
// @Success 200 {object} domain.TranscribeResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dprs/transcribe [post]
func (h *DPRHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req domain.TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	text := h.insightsService.TranscribeVoiceNote(r.Context(), req.AudioBase64, req.MimeType)
	respondJSON(w, http.StatusOK, domain.TranscribeResponse{Text: text})
}
