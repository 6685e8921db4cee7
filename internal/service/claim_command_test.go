package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chernandez90/InsurancePortal/internal/domain"
)

func TestClaimCommandHandler_Handle(t *testing.T) {
	repo := newClaimRepo(t)
	h := NewClaimCommandHandler(repo).(*claimCommandHandler)
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	claim, err := h.Handle(context.Background(), "user-1", &domain.SubmitClaimRequest{
		PolicyReference: "  POL-001 ",
		Description:     " hail damage\n",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if claim.ID == "" {
		t.Fatal("expected an id")
	}
	if claim.PolicyReference != "  POL-001 " || claim.Description != " hail damage\n" {
		t.Errorf("expected fields as submitted, got %q %q", claim.PolicyReference, claim.Description)
	}
	if !claim.FilingDate.Equal(fixed) {
		t.Errorf("expected filing date to default to now, got %v", claim.FilingDate)
	}
	if claim.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", claim.UserID)
	}

	stored, err := repo.GetByID(context.Background(), claim.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.PolicyReference != "  POL-001 " || stored.Description != " hail damage\n" {
		t.Errorf("unexpected stored claim %q %q", stored.PolicyReference, stored.Description)
	}
}

func TestClaimCommandHandler_RoundTripsInput(t *testing.T) {
	repo := newClaimRepo(t)
	h := NewClaimCommandHandler(repo)
	long := strings.Repeat("water damage in the basement ", 500)

	tests := []struct {
		name        string
		policy      string
		description string
	}{
		{"padded", " POL-001 ", "rear bumper damage\n"},
		{"unicode", "POL-ÄÖ-7", "Schaden am Dach 屋根"},
		{"long", strings.Repeat("P", 300), long},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim, err := h.Handle(context.Background(), "user-1", &domain.SubmitClaimRequest{
				PolicyReference: tt.policy,
				Description:     tt.description,
			})
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}

			stored, err := NewClaimQueryHandler(repo).GetByID(context.Background(), claim.ID)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if stored.PolicyReference != tt.policy {
				t.Errorf("policyReference: expected %q, got %q", tt.policy, stored.PolicyReference)
			}
			if stored.Description != tt.description {
				t.Errorf("description changed on the way through the store")
			}
		})
	}
}

func TestClaimCommandHandler_KeepsFilingDate(t *testing.T) {
	h := NewClaimCommandHandler(newClaimRepo(t))
	date, err := domain.ParseDate("2023-12-24")
	if err != nil {
		t.Fatal(err)
	}

	claim, err := h.Handle(context.Background(), "user-1", &domain.SubmitClaimRequest{
		PolicyReference: "POL-9",
		Description:     "flood",
		FilingDate:      &date,
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC); !claim.FilingDate.Equal(want) {
		t.Errorf("expected %v, got %v", want, claim.FilingDate)
	}
}

func TestClaimCommandHandler_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   *domain.SubmitClaimRequest
		field string
	}{
		{"nil body", nil, "body"},
		{"empty policy", &domain.SubmitClaimRequest{Description: "d"}, "policyReference"},
		{"blank policy", &domain.SubmitClaimRequest{PolicyReference: "   ", Description: "d"}, "policyReference"},
		{"empty description", &domain.SubmitClaimRequest{PolicyReference: "POL-1"}, "description"},
		{"blank description", &domain.SubmitClaimRequest{PolicyReference: "POL-1", Description: "\t"}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newClaimRepo(t)
			h := NewClaimCommandHandler(repo)

			_, err := h.Handle(context.Background(), "user-1", tt.req)
			ve, ok := IsValidationError(err)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ve.Field)
			}

			claims, err := repo.List(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(claims) != 0 {
				t.Errorf("expected nothing persisted, got %d claims", len(claims))
			}
		})
	}
}

func TestClaimCommandHandler_Unauthenticated(t *testing.T) {
	h := NewClaimCommandHandler(newClaimRepo(t))
	_, err := h.Handle(context.Background(), "", &domain.SubmitClaimRequest{PolicyReference: "P", Description: "D"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestClaimCommandHandler_StoreFailure(t *testing.T) {
	h := NewClaimCommandHandler(failingClaimRepo{})
	_, err := h.Handle(context.Background(), "user-1", &domain.SubmitClaimRequest{PolicyReference: "P", Description: "D"})
	if !errors.Is(err, errStoreDown) {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestClaimQueryHandler(t *testing.T) {
	repo := newClaimRepo(t)
	q := NewClaimQueryHandler(repo)
	ctx := context.Background()

	all, err := q.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if all == nil || len(all) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", all)
	}

	if _, err := q.GetByID(ctx, "missing"); !errors.Is(err, ErrClaimNotFound) {
		t.Errorf("expected ErrClaimNotFound, got %v", err)
	}

	claim := &domain.Claim{PolicyReference: "POL-1", Description: "d", FilingDate: time.Now().UTC(), UserID: "u"}
	if err := repo.Create(ctx, claim); err != nil {
		t.Fatal(err)
	}
	got, err := q.GetByID(ctx, claim.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != claim.ID {
		t.Errorf("expected %s, got %s", claim.ID, got.ID)
	}
}
