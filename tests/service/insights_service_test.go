package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"github.com/nirmaanhq/siteops-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newInsightsServiceWithoutAI(db *gorm.DB) *service.InsightsService {
	return service.NewInsightsService(
		nil,
		repository.NewProjectRepository(db),
		repository.NewDPRRepository(db),
		repository.NewMaterialRequestRepository(db),
		zap.NewNop(),
	)
}

func TestInsightsService_TranscribeFallsBackWithoutAI(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newInsightsServiceWithoutAI(db)

	text := svc.TranscribeVoiceNote(context.Background(), "AAAA", "audio/m4a")
	assert.Equal(t, service.TranscriptionFallback, text)
}

func TestInsightsService_SummaryFallsBackWithoutAI(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newInsightsServiceWithoutAI(db)
	project := testutil.CreateTestProject(t, db, "Riverside Apartments")

	summary, err := svc.ProjectSummary(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, service.SummaryFallback, summary)
}

func TestInsightsService_SummaryUnknownProject(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newInsightsServiceWithoutAI(db)

	_, err := svc.ProjectSummary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
