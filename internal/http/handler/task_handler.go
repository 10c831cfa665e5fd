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

type TaskHandler struct {
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// @Summary List project tasks
// @Description List tasks for a project, each annotated with its current delay state
// @Tags Tasks
// @Produce json
// @Param projectId query string true "Project ID"
// @Success 200 {array} domain.TaskDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.URL.Query().Get("projectId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'projectId' must be a valid UUID")
		return
	}

	tasks, err := h.taskService.ListByProject(r.Context(), projectID)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to list tasks", zap.Error(err), zap.String("project_id", projectID.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list tasks")
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// @Summary Create task
// @Description Create a new task under a project
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body domain.CreateTaskRequest true "Task data"
// @Success 201 {object} domain.TaskDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	task, err := h.taskService.Create(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create task", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}

	w.Header().Set("Location", "/api/v1/tasks/"+task.ID.String())
	respondJSON(w, http.StatusCreated, task)
}

// @Summary Get task
// @Description Get a task by ID, annotated with its current delay state
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} domain.TaskDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	task, err := h.taskService.GetByID(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get task", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// @Summary Update task
// @Description Update task details (title, description, assignee, due date, delay reason)
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body domain.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} domain.TaskDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	var req domain.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	task, err := h.taskService.Update(r.Context(), id, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to update task", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to update task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// @Summary Start task
// @Description Move a pending task into progress
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} domain.TaskDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks/{id}/start [post]
func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	task, err := h.taskService.Start(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to start task", zap.Error(err), zap.String("id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to start task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}
