package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/ai"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fallback texts returned when the AI collaborator is unavailable. The
// workflows that use these never fail on AI errors; they degrade to the
// sentinel and carry on.
const (
	TranscriptionFallback = "Error transcribing voice note."
	SummaryFallback       = "AI service unavailable currently."
)

// InsightsService wraps the AI collaborator for voice-note transcription and
// project executive summaries.
type InsightsService struct {
	client       *ai.Client
	projectRepo  *repository.ProjectRepository
	dprRepo      *repository.DPRRepository
	materialRepo *repository.MaterialRequestRepository
	logger       *zap.Logger
}

// NewInsightsService creates a new insights service
func NewInsightsService(
	client *ai.Client,
	projectRepo *repository.ProjectRepository,
	dprRepo *repository.DPRRepository,
	materialRepo *repository.MaterialRequestRepository,
	logger *zap.Logger,
) *InsightsService {
	return &InsightsService{
		client:       client,
		projectRepo:  projectRepo,
		dprRepo:      dprRepo,
		materialRepo: materialRepo,
		logger:       logger,
	}
}

// TranscribeVoiceNote turns a recorded site note into text. Always returns
// a usable string; collaborator failures yield the fallback.
func (s *InsightsService) TranscribeVoiceNote(ctx context.Context, audioBase64, mimeType string) string {
	if s.client == nil {
		return TranscriptionFallback
	}

	text, err := s.client.Transcribe(ctx, audioBase64, mimeType)
	if err != nil {
		s.logger.Warn("voice note transcription failed", zap.Error(err))
		return TranscriptionFallback
	}
	return text
}

// ProjectSummary produces an executive summary from the last three DPRs and
// the outstanding material requests of a project.
func (s *InsightsService) ProjectSummary(ctx context.Context, projectID uuid.UUID) (string, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if s.client == nil {
		return SummaryFallback, nil
	}

	dprs, err := s.dprRepo.ListByProject(ctx, projectID, 3)
	if err != nil {
		return "", err
	}

	materials, err := s.materialRepo.ListByProject(ctx, projectID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the current status of construction project %q in %s for management.\n\n", project.Name, project.Location)
	b.WriteString("Recent daily progress reports:\n")
	if len(dprs) == 0 {
		b.WriteString("- none submitted yet\n")
	}
	for _, dpr := range dprs {
		fmt.Fprintf(&b, "- %s (%s, workforce %d): %s\n",
			dpr.ReportDate.Format("2006-01-02"), dpr.ApprovalStatus, dpr.WorkforceCount, dpr.Description)
	}
	b.WriteString("\nPending material requests:\n")
	pending := 0
	for _, m := range materials {
		if m.Status == domain.MaterialStatusRequested {
			fmt.Fprintf(&b, "- %s: %.2f %s\n", m.ItemName, m.Quantity, m.Unit)
			pending++
		}
	}
	if pending == 0 {
		b.WriteString("- none\n")
	}

	summary, err := s.client.GenerateText(ctx, b.String())
	if err != nil {
		s.logger.Warn("project summary generation failed",
			zap.String("project_id", projectID.String()), zap.Error(err))
		return SummaryFallback, nil
	}

	return summary, nil
}
