package service

import (
	"context"
	"strings"
	"time"

	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/internal/repository"
	"github.com/chernandez90/InsurancePortal/pkg/log"
)

// claimCommandHandler implements ClaimCommandHandler.
type claimCommandHandler struct {
	repo repository.ClaimRepository
	now  func() time.Time
}

// NewClaimCommandHandler creates a command handler writing to repo.
func NewClaimCommandHandler(repo repository.ClaimRepository) ClaimCommandHandler {
	return &claimCommandHandler{repo: repo, now: time.Now}
}

// Handle validates req and persists it. Text fields are stored as submitted;
// whitespace only matters for the emptiness check. A missing filing date
// defaults to now.
func (h *claimCommandHandler) Handle(ctx context.Context, userID string, req *domain.SubmitClaimRequest) (*domain.Claim, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	filed := h.now().UTC()
	if req.FilingDate != nil && !req.FilingDate.IsZero() {
		filed = req.FilingDate.UTC()
	}

	claim := &domain.Claim{
		PolicyReference: req.PolicyReference,
		Description:     req.Description,
		FilingDate:      filed,
		UserID:          userID,
	}
	if err := h.repo.Create(ctx, claim); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to persist claim")
		return nil, err
	}

	return claim, nil
}

func validateSubmission(req *domain.SubmitClaimRequest) error {
	if req == nil {
		return &ValidationError{Field: "body", Reason: "is required"}
	}

	if strings.TrimSpace(req.PolicyReference) == "" {
		return &ValidationError{Field: "policyReference", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}

	return nil
}
