package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"gorm.io/gorm"
)

type PartyRepository struct {
	db *gorm.DB
}

func NewPartyRepository(db *gorm.DB) *PartyRepository {
	return &PartyRepository{db: db}
}

func (r *PartyRepository) Create(ctx context.Context, party *domain.Party) error {
	return r.db.WithContext(ctx).Create(party).Error
}

func (r *PartyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	var party domain.Party
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&party).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *PartyRepository) Update(ctx context.Context, party *domain.Party) error {
	return r.db.WithContext(ctx).Save(party).Error
}

func (r *PartyRepository) List(ctx context.Context, limit, offset int, partyType *domain.PartyType) ([]domain.Party, int64, error) {
	var parties []domain.Party
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Party{})
	if partyType != nil {
		query = query.Where("type = ?", *partyType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(offset).Limit(limit).Order("name ASC").Find(&parties).Error
	return parties, total, err
}
