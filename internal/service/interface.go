package service

import (
	"context"
	"io"

	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/pkg/pubsub"
)

// ClaimCommandHandler validates and persists new claims. It never notifies.
type ClaimCommandHandler interface {
	Handle(ctx context.Context, userID string, req *domain.SubmitClaimRequest) (*domain.Claim, error)
}

// ClaimQueryHandler reads claims. It has no side effects.
type ClaimQueryHandler interface {
	GetByID(ctx context.Context, id string) (*domain.Claim, error)
	GetAll(ctx context.Context) ([]domain.Claim, error)
}

// ClaimSubmitter is the entry point for claim submission.
type ClaimSubmitter interface {
	Submit(ctx context.Context, userID string, req *domain.SubmitClaimRequest) (*domain.Claim, error)
}

// Notifier pushes events to connected realtime sessions.
type Notifier interface {
	BroadcastToAll(ctx context.Context, event, payload string) error
}

// EventPublisher sends integration events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event *pubsub.Event) error
}

// DocumentService manages claim attachments.
type DocumentService interface {
	Upload(ctx context.Context, userID, claimID string, file UploadFile) (*domain.UploadResult, error)
	List(ctx context.Context, claimID string) ([]domain.Document, error)
	Open(ctx context.Context, claimID, key string) (io.ReadCloser, *domain.Document, error)
	URL(ctx context.Context, claimID, key string) (string, error)
	Delete(ctx context.Context, userID, claimID, key string) error
}

// UploadFile describes an incoming attachment.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AuthService handles accounts and tokens.
type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*domain.UserResponse, error)
}
