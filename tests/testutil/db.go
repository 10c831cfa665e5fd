// Package testutil provides shared helpers for integration tests. Tests
// run against a disposable PostgreSQL instance configured through the
// DATABASE_* environment variables and are skipped when none is available.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/auth"
	"github.com/nirmaanhq/siteops-api/internal/database"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB connects to the test database and runs migrations
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	host := os.Getenv("DATABASE_HOST")
	if host == "" {
		t.Skip("DATABASE_HOST not set, skipping database test")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host,
		getEnv("DATABASE_PORT", "5432"),
		getEnv("DATABASE_USER", "postgres"),
		getEnv("DATABASE_PASSWORD", "postgres"),
		getEnv("DATABASE_NAME", "siteops_test"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, database.AutoMigrate(db), "Failed to migrate test database")

	return db
}

// SetupCleanTestDB connects to the test database and removes all data
func SetupCleanTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := SetupTestDB(t)
	CleanupTestData(t, db)
	return db
}

// CleanupTestData removes all rows in dependency order
func CleanupTestData(t *testing.T, db *gorm.DB) {
	t.Helper()

	tables := []string{
		"dpr_material_usages",
		"invoice_line_items",
		"invoices",
		"dprs",
		"attendance_records",
		"material_requests",
		"tasks",
		"number_sequences",
		"audit_entries",
		"parties",
		"projects",
		"users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Logf("cleanup of %s failed: %v", table, err)
		}
	}
}

// CreateTestProject inserts a project with sensible defaults
func CreateTestProject(t *testing.T, db *gorm.DB, name string) *domain.Project {
	t.Helper()

	project := &domain.Project{
		Name:             name,
		Location:         "Mumbai",
		Status:           domain.ProjectStatusActive,
		Budget:           5000000,
		StartDate:        time.Now().AddDate(0, -3, 0),
		StateCode:        "27",
		RetentionPercent: 5,
		GSTRequired:      true,
	}
	require.NoError(t, db.Create(project).Error, "Failed to create test project")
	return project
}

// CreateTestTask inserts a task in the given status
func CreateTestTask(t *testing.T, db *gorm.DB, projectID uuid.UUID, title string, status domain.TaskStatus, dueDate time.Time) *domain.Task {
	t.Helper()

	task := &domain.Task{
		ProjectID:  projectID,
		Title:      title,
		AssignedTo: "Ravi Kumar",
		Status:     status,
		DueDate:    dueDate,
	}
	require.NoError(t, db.Create(task).Error, "Failed to create test task")
	return task
}

// CreateTestMaterialRequest inserts a material request in the given status
func CreateTestMaterialRequest(t *testing.T, db *gorm.DB, projectID uuid.UUID, itemName string, quantity float64, status domain.MaterialStatus) *domain.MaterialRequest {
	t.Helper()

	request := &domain.MaterialRequest{
		ProjectID:   projectID,
		ItemName:    itemName,
		Quantity:    quantity,
		Unit:        "bags",
		Status:      status,
		RequestedBy: "Ravi Kumar",
		RequestDate: time.Now(),
	}
	require.NoError(t, db.Create(request).Error, "Failed to create test material request")
	return request
}

// CreateTestParty inserts a billed party
func CreateTestParty(t *testing.T, db *gorm.DB, name, stateCode string, partyType domain.PartyType) *domain.Party {
	t.Helper()

	party := &domain.Party{
		Name:      name,
		GSTIN:     stateCode + "AABCU1234F1Z5",
		Address:   "Plot 12, Industrial Area",
		StateCode: stateCode,
		Type:      partyType,
	}
	require.NoError(t, db.Create(party).Error, "Failed to create test party")
	return party
}

// ContextWithUser returns a context carrying an authenticated user
func ContextWithUser(name string, role domain.Role) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: uuid.New(),
		Name:   name,
		Email:  "test@example.com",
		Role:   role,
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
