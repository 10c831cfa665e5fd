package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Delay reasons shown on derived task projections
const (
	DelayReasonDeadline = "Deadline Exceeded"
	DelayReasonMaterial = "Material Shortage"
)

// validTaskTransitions defines which status changes are allowed through the
// direct update path. Entry to PENDING_APPROVAL happens only via DPR
// submission, and exit from it only via DPR review, so neither appears here.
var validTaskTransitions = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskStatusPending:    {domain.TaskStatusInProgress},
	domain.TaskStatusInProgress: {},
	domain.TaskStatusRejected:   {domain.TaskStatusInProgress},
}

// TaskService handles site task operations
type TaskService struct {
	taskRepo     *repository.TaskRepository
	materialRepo *repository.MaterialRequestRepository
	auditTrail   *AuditTrailService
	logger       *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo *repository.TaskRepository,
	materialRepo *repository.MaterialRequestRepository,
	auditTrail *AuditTrailService,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		materialRepo: materialRepo,
		auditTrail:   auditTrail,
		logger:       logger,
	}
}

// DelayAnnotation computes the derived delay state of a task at the given
// instant. A task past its due date and not completed is delayed with
// "Deadline Exceeded"; that reason wins over everything else. Otherwise an
// outstanding REQUESTED material request in the same project marks the task
// "Material Shortage". Otherwise a manually recorded reason, if present, is
// surfaced as-is. The result is never written back; it is recomputed on
// every read so it stays current as time passes and materials move.
func DelayAnnotation(task *domain.Task, materials []domain.MaterialRequest, now time.Time) (bool, string) {
	if now.After(task.DueDate) && task.Status != domain.TaskStatusCompleted {
		return true, DelayReasonDeadline
	}

	for _, m := range materials {
		if m.ProjectID == task.ProjectID && m.Status == domain.MaterialStatusRequested {
			return true, DelayReasonMaterial
		}
	}

	if task.DelayReason != "" {
		return true, task.DelayReason
	}

	return false, ""
}

// annotate builds the projection DTOs for a set of tasks sharing a project
func annotate(tasks []domain.Task, materials []domain.MaterialRequest, now time.Time) []domain.TaskDTO {
	dtos := make([]domain.TaskDTO, 0, len(tasks))
	for i := range tasks {
		delayed, reason := DelayAnnotation(&tasks[i], materials, now)
		dtos = append(dtos, domain.TaskDTO{
			Task:             tasks[i],
			IsDelayed:        delayed,
			DelayReasonShown: reason,
		})
	}
	return dtos
}

// Create registers a new task in PENDING status
func (s *TaskService) Create(ctx context.Context, req *domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	dueDate, err := domain.ParseDate(req.DueDate)
	if err != nil {
		return nil, ErrInvalidInput
	}

	task := &domain.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      domain.TaskStatusPending,
		DueDate:     dueDate,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task", zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditTaskCreated, task.ID.String(), task.Title)

	dto := s.annotateOne(ctx, task)
	return dto, nil
}

// GetByID returns a single task with its delay projection
func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.annotateOne(ctx, task), nil
}

// ListByProject returns all tasks of a project with delay projections
func (s *TaskService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TaskDTO, error) {
	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	materials, err := s.materialRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return annotate(tasks, materials, time.Now()), nil
}

// Update modifies task details. Status is not updatable here; use Start or
// the DPR review flow.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateTaskRequest) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AssignedTo != nil {
		task.AssignedTo = *req.AssignedTo
	}
	if req.DueDate != nil {
		dueDate, err := domain.ParseDate(*req.DueDate)
		if err != nil {
			return nil, ErrInvalidInput
		}
		task.DueDate = dueDate
	}
	if req.DelayReason != nil {
		task.DelayReason = *req.DelayReason
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		s.logger.Error("failed to update task", zap.String("task_id", id.String()), zap.Error(err))
		return nil, err
	}

	return s.annotateOne(ctx, task), nil
}

// Start moves a task into IN_PROGRESS
func (s *TaskService) Start(ctx context.Context, id uuid.UUID) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !isTransitionAllowed(task.Status, domain.TaskStatusInProgress) {
		return nil, ErrInvalidTransition
	}

	task.Status = domain.TaskStatusInProgress
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditTaskStatusInProgress, task.ID.String(), "")

	return s.annotateOne(ctx, task), nil
}

func isTransitionAllowed(from, to domain.TaskStatus) bool {
	for _, allowed := range validTaskTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *TaskService) annotateOne(ctx context.Context, task *domain.Task) *domain.TaskDTO {
	materials, err := s.materialRepo.ListByProject(ctx, task.ProjectID)
	if err != nil {
		// Degrade to deadline-only annotation rather than failing the read
		s.logger.Warn("failed to load materials for delay annotation",
			zap.String("project_id", task.ProjectID.String()), zap.Error(err))
		materials = nil
	}

	delayed, reason := DelayAnnotation(task, materials, time.Now())
	return &domain.TaskDTO{Task: *task, IsDelayed: delayed, DelayReasonShown: reason}
}
