package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestDelayAnnotation_DeadlineExceeded(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	task := &domain.Task{
		ProjectID: uuid.New(),
		Status:    domain.TaskStatusInProgress,
		DueDate:   now.AddDate(0, 0, -2),
	}

	delayed, reason := service.DelayAnnotation(task, nil, now)

	assert.True(t, delayed)
	assert.Equal(t, service.DelayReasonDeadline, reason)
}

func TestDelayAnnotation_DeadlineWinsOverMaterialShortage(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	projectID := uuid.New()
	task := &domain.Task{
		ProjectID:   projectID,
		Status:      domain.TaskStatusInProgress,
		DueDate:     now.AddDate(0, 0, -1),
		DelayReason: "Crane breakdown",
	}
	materials := []domain.MaterialRequest{
		{ProjectID: projectID, ItemName: "Cement", Status: domain.MaterialStatusRequested},
	}

	delayed, reason := service.DelayAnnotation(task, materials, now)

	assert.True(t, delayed)
	assert.Equal(t, service.DelayReasonDeadline, reason)
}

func TestDelayAnnotation_MaterialShortage(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	projectID := uuid.New()
	task := &domain.Task{
		ProjectID: projectID,
		Status:    domain.TaskStatusInProgress,
		DueDate:   now.AddDate(0, 0, 5),
	}
	materials := []domain.MaterialRequest{
		{ProjectID: projectID, ItemName: "Steel", Status: domain.MaterialStatusRequested},
	}

	delayed, reason := service.DelayAnnotation(task, materials, now)

	assert.True(t, delayed)
	assert.Equal(t, service.DelayReasonMaterial, reason)
}

func TestDelayAnnotation_MaterialShortageIgnoresOtherProjects(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	task := &domain.Task{
		ProjectID: uuid.New(),
		Status:    domain.TaskStatusPending,
		DueDate:   now.AddDate(0, 0, 5),
	}
	materials := []domain.MaterialRequest{
		{ProjectID: uuid.New(), ItemName: "Steel", Status: domain.MaterialStatusRequested},
	}

	delayed, reason := service.DelayAnnotation(task, materials, now)

	assert.False(t, delayed)
	assert.Empty(t, reason)
}

func TestDelayAnnotation_ResolvedMaterialClearsShortage(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	projectID := uuid.New()
	task := &domain.Task{
		ProjectID: projectID,
		Status:    domain.TaskStatusInProgress,
		DueDate:   now.AddDate(0, 0, 5),
	}
	materials := []domain.MaterialRequest{
		{ProjectID: projectID, ItemName: "Cement", Status: domain.MaterialStatusApproved},
		{ProjectID: projectID, ItemName: "Steel", Status: domain.MaterialStatusDelivered},
	}

	delayed, reason := service.DelayAnnotation(task, materials, now)

	assert.False(t, delayed)
	assert.Empty(t, reason)
}

func TestDelayAnnotation_ManualReasonFallback(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	task := &domain.Task{
		ProjectID:   uuid.New(),
		Status:      domain.TaskStatusInProgress,
		DueDate:     now.AddDate(0, 0, 5),
		DelayReason: "Monsoon flooding",
	}

	delayed, reason := service.DelayAnnotation(task, nil, now)

	assert.True(t, delayed)
	assert.Equal(t, "Monsoon flooding", reason)
}

func TestDelayAnnotation_CompletedTaskNeverDelayedByDeadline(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	task := &domain.Task{
		ProjectID: uuid.New(),
		Status:    domain.TaskStatusCompleted,
		DueDate:   now.AddDate(0, 0, -10),
	}

	delayed, reason := service.DelayAnnotation(task, nil, now)

	assert.False(t, delayed)
	assert.Empty(t, reason)
}

func TestDelayAnnotation_NotDelayed(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	task := &domain.Task{
		ProjectID: uuid.New(),
		Status:    domain.TaskStatusPending,
		DueDate:   now.AddDate(0, 0, 3),
	}

	delayed, reason := service.DelayAnnotation(task, nil, now)

	assert.False(t, delayed)
	assert.Empty(t, reason)
}
