package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/billing"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PartyService handles billed-party registration. GSTINs are validated
// structurally on every write.
type PartyService struct {
	partyRepo  *repository.PartyRepository
	auditTrail *AuditTrailService
	logger     *zap.Logger
}

// NewPartyService creates a new party service
func NewPartyService(partyRepo *repository.PartyRepository, auditTrail *AuditTrailService, logger *zap.Logger) *PartyService {
	return &PartyService{
		partyRepo:  partyRepo,
		auditTrail: auditTrail,
		logger:     logger,
	}
}

// Create registers a party
func (s *PartyService) Create(ctx context.Context, req *domain.CreatePartyRequest) (*domain.Party, error) {
	if req.GSTIN != "" && !billing.ValidateGSTIN(req.GSTIN) {
		return nil, ErrInvalidGSTIN
	}

	party := &domain.Party{
		Name:      req.Name,
		GSTIN:     req.GSTIN,
		Address:   req.Address,
		StateCode: req.StateCode,
		Type:      domain.PartyType(req.Type),
	}

	if err := s.partyRepo.Create(ctx, party); err != nil {
		s.logger.Error("failed to create party", zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditPartyCreated, party.ID.String(), party.Name)

	return party, nil
}

// GetByID returns a single party
func (s *PartyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	party, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return party, nil
}

// List returns parties filtered by type
func (s *PartyService) List(ctx context.Context, limit, offset int, partyType *domain.PartyType) ([]domain.Party, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.partyRepo.List(ctx, limit, offset, partyType)
}

// Update modifies party details
func (s *PartyService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePartyRequest) (*domain.Party, error) {
	party, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.GSTIN != nil {
		if *req.GSTIN != "" && !billing.ValidateGSTIN(*req.GSTIN) {
			return nil, ErrInvalidGSTIN
		}
		party.GSTIN = *req.GSTIN
	}
	if req.Name != nil {
		party.Name = *req.Name
	}
	if req.Address != nil {
		party.Address = *req.Address
	}
	if req.StateCode != nil {
		party.StateCode = *req.StateCode
	}

	if err := s.partyRepo.Update(ctx, party); err != nil {
		s.logger.Error("failed to update party", zap.String("party_id", id.String()), zap.Error(err))
		return nil, err
	}

	_ = s.auditTrail.Record(ctx, domain.AuditPartyUpdated, party.ID.String(), party.Name)

	return party, nil
}
