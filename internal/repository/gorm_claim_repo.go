package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/internal/idgen"
)

// GormClaimRepository implements ClaimRepository using GORM.
type GormClaimRepository struct {
	db  *gorm.DB
	ids idgen.Generator
}

// NewGormClaimRepository creates a claim repository that draws ids from ids.
func NewGormClaimRepository(db *gorm.DB, ids idgen.Generator) *GormClaimRepository {
	return &GormClaimRepository{db: db, ids: ids}
}

func (r *GormClaimRepository) Create(ctx context.Context, claim *domain.Claim) error {
	id, err := r.ids.Generate()
	if err != nil {
		return fmt.Errorf("generate claim id: %w", err)
	}

	model := domain.ClaimToModel(claim)
	model.ClaimID = id
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}

	claim.ID = model.ClaimID
	claim.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormClaimRepository) GetByID(ctx context.Context, id string) (*domain.Claim, error) {
	var model domain.ClaimModel
	result := r.db.WithContext(ctx).First(&model, "claim_id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

func (r *GormClaimRepository) List(ctx context.Context) ([]domain.Claim, error) {
	var models []domain.ClaimModel
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	claims := make([]domain.Claim, 0, len(models))
	for i := range models {
		claims = append(claims, *models[i].ToDomain())
	}
	return claims, nil
}

func (r *GormClaimRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ClaimModel{}).
		Where("claim_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
