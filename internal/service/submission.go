package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chernandez90/InsurancePortal/internal/audit"
	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/pkg/log"
	"github.com/chernandez90/InsurancePortal/pkg/pubsub"
)

const publishTimeout = 3 * time.Second

// SubmissionService sequences a claim submission: persist, notify viewers,
// publish the integration event. Only persistence can fail a submission.
type SubmissionService struct {
	commands  ClaimCommandHandler
	notifier  Notifier
	publisher EventPublisher
}

// NewSubmissionService wires the orchestrator. publisher may be nil.
func NewSubmissionService(commands ClaimCommandHandler, notifier Notifier, publisher EventPublisher) *SubmissionService {
	if publisher == nil {
		publisher = pubsub.NoopPublisher{}
	}
	return &SubmissionService{
		commands:  commands,
		notifier:  notifier,
		publisher: publisher,
	}
}

// Submit persists the claim and then broadcasts ClaimUpdated to every
// connected session. Broadcast and publish failures are logged only.
func (s *SubmissionService) Submit(ctx context.Context, userID string, req *domain.SubmitClaimRequest) (*domain.Claim, error) {
	l := log.Ctx(ctx).With().Str(log.FieldUserID, userID).Logger()
	l.Debug().Str("state", string(domain.SubmissionPending)).Msg("claim submission received")

	claim, err := s.commands.Handle(ctx, userID, req)
	if err != nil {
		if ve, ok := IsValidationError(err); ok {
			audit.LogWithDetail(ctx, audit.ActionClaimRejected, userID, ve.Error(), "claim rejected")
		}
		return nil, err
	}

	l = l.With().Str(log.FieldClaimID, claim.ID).Logger()

	if err := s.notifier.BroadcastToAll(ctx, domain.ClaimUpdatedEvent, domain.NewClaimMessage(claim.PolicyReference)); err != nil {
		l.Warn().Err(err).Msg("claim update broadcast failed")
	}

	s.publishCreated(ctx, l, claim)

	l.Info().Str("state", string(domain.SubmissionCompleted)).Msg("claim submitted")
	audit.LogTarget(ctx, audit.ActionClaimSubmit, userID, claim.ID, "claim submitted")

	return claim, nil
}

func (s *SubmissionService) publishCreated(ctx context.Context, l zerolog.Logger, claim *domain.Claim) {
	evt, err := pubsub.NewEvent(pubsub.EventClaimCreated, claim.ID, pubsub.ClaimCreatedPayload{
		ClaimID:         claim.ID,
		PolicyReference: claim.PolicyReference,
		UserID:          claim.UserID,
	})
	if err != nil {
		l.Warn().Err(err).Msg("failed to build claim event")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, pubsub.ChannelClaimEvents, evt); err != nil {
		l.Warn().Err(err).Msg("failed to publish claim event")
	}
}
