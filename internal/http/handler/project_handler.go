package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService  *service.ProjectService
	insightsService *service.InsightsService
	logger          *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, insightsService *service.InsightsService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService:  projectService,
		insightsService: insightsService,
		logger:          logger,
	}
}

// @Summary List projects
// @Description List projects with optional status filter
// @Tags Projects
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Param status query string false "Filter by status (Active, On Hold, Completed)"
// @Success 200 {object} domain.ListResponse[domain.Project]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)

	var status *domain.ProjectStatus
	if s := r.URL.Query().Get("status"); s != "" {
		ps := domain.ProjectStatus(s)
		if !ps.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid project status filter")
			return
		}
		status = &ps
	}

	projects, total, err := h.projectService.List(r.Context(), limit, offset, status)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.Project]{
		Data: projects,
		Meta: domain.ListMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// @Summary Create project
// @Description Create a new construction project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.Project
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create project", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, project)
}

// @Summary Get project
// @Description Get a project by ID
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.Project
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get project", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// @Summary Update project
// @Description Update project details
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.UpdateProjectRequest true "Fields to update"
// @Success 200 {object} domain.Project
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	var req domain.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Update(r.Context(), id, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to update project", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// @Summary Search projects
// @Description Search projects by name or location
// @Tags Projects
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Max results" default(10)
// @Success 200 {array} domain.Project
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/search [get]
func (h *ProjectHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	projects, err := h.projectService.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to search projects", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to search projects")
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// @Summary Project summary
// @Description Generate an executive summary of recent project activity
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectSummaryResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/summary [get]
func (h *ProjectHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	summary, err := h.insightsService.ProjectSummary(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to generate project summary", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to generate project summary")
		return
	}

	respondJSON(w, http.StatusOK, domain.ProjectSummaryResponse{Summary: summary})
}
