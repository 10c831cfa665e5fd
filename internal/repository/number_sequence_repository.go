package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository handles RA bill numbering. Sequences are scoped
// per project and calendar year so running-account bills number 001, 002,
// ... within each project's year.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber atomically retrieves and increments the sequence for a
// project/year. Uses SELECT FOR UPDATE so concurrent invoice creation never
// hands out the same number. If no sequence exists, it starts at 1.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, projectID uuid.UUID, year int) (int, error) {
	var seq domain.NumberSequence
	var next int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_id = ? AND year = ?", projectID, year).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				ProjectID:  projectID,
				Year:       year,
				LastNumber: 1,
				UpdatedAt:  time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			next = 1
		} else if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		} else {
			next = seq.LastNumber + 1
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_number": next,
				"updated_at":  time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return next, nil
}

// GetCurrentNumber retrieves the current value without incrementing.
// Returns 0 if no sequence exists for the project/year.
func (r *NumberSequenceRepository) GetCurrentNumber(ctx context.Context, projectID uuid.UUID, year int) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND year = ?", projectID, year).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	return seq.LastNumber, nil
}
