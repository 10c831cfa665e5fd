package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/nirmaanhq/siteops-api/internal/config"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := cfg.ConnectionString()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// HealthCheck pings the database
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// HealthCheckWithStats pings the database and returns connection pool stats
func HealthCheckWithStats(db *gorm.DB) (sql.DBStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return sql.DBStats{}, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return sql.DBStats{}, fmt.Errorf("database ping failed: %w", err)
	}
	return sqlDB.Stats(), nil
}

// AutoMigrate runs automatic migrations (for development only)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.Task{},
		&domain.MaterialRequest{},
		&domain.DPR{},
		&domain.DPRMaterialUsage{},
		&domain.Party{},
		&domain.Invoice{},
		&domain.InvoiceLineItem{},
		&domain.AttendanceRecord{},
		&domain.AuditEntry{},
		&domain.NumberSequence{},
	)
}

// Seed ensures baseline rows exist so a fresh install is immediately usable.
// It is idempotent and safe to run on every startup.
func Seed(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&domain.Project{}).Where("name = ?", "Skyline Towers").Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check seed project: %w", err)
	}
	if count > 0 {
		return nil
	}

	project := &domain.Project{
		Name:             "Skyline Towers",
		Location:         "Mumbai",
		StateCode:        "27",
		Status:           domain.ProjectStatusActive,
		StartDate:        time.Now().UTC(),
		Milestones:       pq.StringArray{"Foundation", "Structure", "Finishing"},
		RetentionPercent: 5,
		GSTRequired:      true,
	}
	if err := db.Create(project).Error; err != nil {
		return fmt.Errorf("failed to seed default project: %w", err)
	}

	log.Info("seeded default project",
		zap.String("project_id", project.ID.String()),
		zap.String("name", project.Name),
	)
	return nil
}
