package service

import (
	"context"
	"errors"

	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/internal/repository"
)

type claimQueryHandler struct {
	repo repository.ClaimRepository
}

// NewClaimQueryHandler creates a read-only handler over repo.
func NewClaimQueryHandler(repo repository.ClaimRepository) ClaimQueryHandler {
	return &claimQueryHandler{repo: repo}
}

func (h *claimQueryHandler) GetByID(ctx context.Context, id string) (*domain.Claim, error) {
	claim, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClaimNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return claim, nil
}

func (h *claimQueryHandler) GetAll(ctx context.Context) ([]domain.Claim, error) {
	return h.repo.List(ctx)
}
