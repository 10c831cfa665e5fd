package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"go.uber.org/zap"
)

type AttendanceHandler struct {
	attendanceService *service.AttendanceService
	logger            *zap.Logger
}

func NewAttendanceHandler(attendanceService *service.AttendanceService, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
		logger:            logger,
	}
}

// @Summary Check in
// @Description Record an attendance check-in for the authenticated user at the given site location
// @Tags Attendance
// @Accept json
// @Produce json
// @Param request body domain.CheckInRequest true "Check-in data"
// @Success 201 {object} domain.AttendanceRecord
// @Security BearerAuth
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	record, err := h.attendanceService.CheckIn(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to check in", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to check in")
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// @Summary Check out
// @Description Close the open attendance record for the authenticated user
// @Tags Attendance
// @Produce json
// @Success 200 {object} domain.AttendanceRecord
// @Security BearerAuth
// @Router /attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	record, err := h.attendanceService.CheckOut(r.Context())
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to check out", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to check out")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// @Summary List project attendance
// @Description List attendance records for a project within a date window
// @Tags Attendance
// @Produce json
// @Param projectId query string true "Project ID"
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Success 200 {array} domain.AttendanceRecord
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /attendance [get]
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.URL.Query().Get("projectId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'projectId' must be a valid UUID")
		return
	}

	// Default window: last 7 days
	to := time.Now()
	from := to.AddDate(0, 0, -7)
	if f := r.URL.Query().Get("from"); f != "" {
		t, err := domain.ParseDate(f)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'from' must be YYYY-MM-DD")
			return
		}
		from = t
	}
	if tq := r.URL.Query().Get("to"); tq != "" {
		t, err := domain.ParseDate(tq)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'to' must be YYYY-MM-DD")
			return
		}
		// Include the whole end day
		to = t.AddDate(0, 0, 1)
	}

	records, err := h.attendanceService.ListByProject(r.Context(), projectID, from, to)
	if err != nil {
		h.logger.Error("failed to list attendance", zap.Error(err), zap.String("project_id", projectID.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list attendance")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// @Summary My attendance
// @Description List the authenticated user's recent attendance records
// @Tags Attendance
// @Produce json
// @Param limit query int false "Max results" default(30)
// @Success 200 {array} domain.AttendanceRecord
// @Security BearerAuth
// @Router /attendance/me [get]
func (h *AttendanceHandler) Mine(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 30
	}

	records, err := h.attendanceService.MyRecent(r.Context(), limit)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to list own attendance", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list attendance")
		return
	}

	respondJSON(w, http.StatusOK, records)
}
