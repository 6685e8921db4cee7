package repository

import (
	"context"
	"errors"

	"github.com/chernandez90/InsurancePortal/internal/domain"
)

var (
	ErrClaimNotFound  = errors.New("claim not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

// ClaimRepository is the claim store. Claims are never updated or deleted.
type ClaimRepository interface {
	// Create assigns ID and CreatedAt, then persists the claim. The claim is
	// visible to GetByID and List as soon as Create returns.
	Create(ctx context.Context, claim *domain.Claim) error
	GetByID(ctx context.Context, id string) (*domain.Claim, error)
	// List returns every claim in insertion order.
	List(ctx context.Context) ([]domain.Claim, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
