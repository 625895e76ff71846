package app

import (
	"context"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/notification"
	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/inbound"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InvitationService implements supplier invitation use cases
type InvitationService struct {
	lifecycle
	biddingRepo    outbound.BiddingRepository
	invitationRepo outbound.InvitationRepository
	memberRepo     outbound.MemberRepository
}

type InvitationServiceParams struct {
	BiddingRepo    outbound.BiddingRepository
	InvitationRepo outbound.InvitationRepository
	MemberRepo     outbound.MemberRepository
	Locker         outbound.Locker
	Policy         *policy.Policy
	Notifier       IntentSink
	Clock          shared.Clock
	Logger         zerolog.Logger
}

// NewInvitationService creates a new invitation service
func NewInvitationService(params InvitationServiceParams) *InvitationService {
	logger := params.Logger.With().Str("component", "invitation_service").Logger()
	return &InvitationService{
		lifecycle:      newLifecycle(params.Locker, params.Policy, params.Notifier, params.Clock, logger),
		biddingRepo:    params.BiddingRepo,
		invitationRepo: params.InvitationRepo,
		memberRepo:     params.MemberRepo,
	}
}

// InviteSupplier invites a supplier to a PENDING or ONGOING bidding
func (client *InvitationService) InviteSupplier(ctx context.Context, biddingID, supplierID uuid.UUID, actor shared.Actor) (*bidding.Invitation, []notification.Intent, error) {
	client.logger.Info().
		Str("bidding_id", biddingID.String()).
		Str("supplier_id", supplierID.String()).
		Str("actor_id", actor.ID.String()).
		Msg("Attempting to invite supplier")

	if client.memberRepo != nil {
		supplier, err := client.memberRepo.GetByID(ctx, supplierID)
		if err != nil {
			client.logger.Warn().Err(err).Str("supplier_id", supplierID.String()).Msg("Supplier not found")
			return nil, nil, err
		}
		if supplier.Kind != shared.ActorSupplier {
			return nil, nil, shared.Validation("member %s is not a supplier", supplierID)
		}
	}

	var (
		inv     *bidding.Invitation
		intents []notification.Intent
	)
	err := client.withLock(ctx, biddingKey(biddingID), func() error {
		b, err := client.biddingRepo.GetByID(ctx, biddingID)
		if err != nil {
			return err
		}
		if err := client.policy.Check(actor, policy.BiddingInvite, string(b.Status)); err != nil {
			client.logger.Warn().Err(err).Str("bidding_id", biddingID.String()).Str("status", string(b.Status)).Msg("Invitation denied")
			return err
		}

		now := client.now()
		inv = bidding.NewInvitation(b.ID, supplierID, actor, now)
		if err := client.invitationRepo.Create(ctx, inv); err != nil {
			client.logger.Warn().Err(err).Str("bidding_id", biddingID.String()).Str("supplier_id", supplierID.String()).Msg("Failed to store invitation")
			return err
		}

		intents = notification.SupplierInvited(b, inv, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	client.logger.Info().Str("invitation_id", inv.ID.String()).Msg("Supplier invited")
	client.publish(ctx, intents)
	return inv, intents, nil
}

// RespondToInvitation records the supplier's single answer
func (client *InvitationService) RespondToInvitation(ctx context.Context, req inbound.RespondToInvitationRequest, actor shared.Actor) (*bidding.Invitation, []notification.Intent, error) {
	if err := requireSupplier(actor, req.SupplierID); err != nil {
		return nil, nil, err
	}

	var (
		inv     *bidding.Invitation
		intents []notification.Intent
	)
	err := client.withLock(ctx, biddingKey(req.BiddingID), func() error {
		b, err := client.biddingRepo.GetByID(ctx, req.BiddingID)
		if err != nil {
			return err
		}
		inv, err = client.invitationRepo.Get(ctx, req.BiddingID, req.SupplierID)
		if err != nil {
			return err
		}

		now := client.now()
		if err := inv.Respond(req.Accept, req.Comment, now); err != nil {
			client.logger.Warn().Err(err).Str("invitation_id", inv.ID.String()).Msg("Invitation already answered")
			return err
		}
		if err := client.invitationRepo.Respond(ctx, inv); err != nil {
			return err
		}

		intents = notification.InvitationAnswered(b, inv, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	client.logger.Info().
		Str("invitation_id", inv.ID.String()).
		Str("response", string(inv.Response)).
		Msg("Invitation answered")
	client.publish(ctx, intents)
	return inv, intents, nil
}

// ListInvitations retrieves the invitations of a bidding
func (client *InvitationService) ListInvitations(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Invitation, error) {
	if _, err := client.biddingRepo.GetByID(ctx, biddingID); err != nil {
		return nil, err
	}
	return client.invitationRepo.ListByBidding(ctx, biddingID)
}
