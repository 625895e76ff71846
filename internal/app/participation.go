package app

import (
	"context"
	"errors"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/notification"
	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/inbound"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ParticipationService implements the supplier bid use cases
type ParticipationService struct {
	lifecycle
	biddingRepo       outbound.BiddingRepository
	invitationRepo    outbound.InvitationRepository
	participationRepo outbound.ParticipationRepository
}

type ParticipationServiceParams struct {
	BiddingRepo       outbound.BiddingRepository
	InvitationRepo    outbound.InvitationRepository
	ParticipationRepo outbound.ParticipationRepository
	Locker            outbound.Locker
	Policy            *policy.Policy
	Notifier          IntentSink
	Clock             shared.Clock
	Logger            zerolog.Logger
}

// NewParticipationService creates a new participation service
func NewParticipationService(params ParticipationServiceParams) *ParticipationService {
	logger := params.Logger.With().Str("component", "participation_service").Logger()
	return &ParticipationService{
		lifecycle:         newLifecycle(params.Locker, params.Policy, params.Notifier, params.Clock, logger),
		biddingRepo:       params.BiddingRepo,
		invitationRepo:    params.InvitationRepo,
		participationRepo: params.ParticipationRepo,
	}
}

// SubmitParticipation places a supplier's bid on an ONGOING bidding
func (s *ParticipationService) SubmitParticipation(ctx context.Context, req inbound.SubmitParticipationRequest, actor shared.Actor) (*bidding.Participation, []notification.Intent, error) {
	s.logger.Info().
		Str("bidding_id", req.BiddingID.String()).
		Str("supplier_id", req.SupplierID.String()).
		Int64("quantity", req.Quantity).
		Msg("Attempting to submit participation")

	if err := requireSupplier(actor, req.SupplierID); err != nil {
		s.logger.Warn().Err(err).Str("actor_id", actor.ID.String()).Msg("Participation denied")
		return nil, nil, err
	}

	offer := bidding.Offer{Quantity: req.Quantity, Comment: req.Comment}
	if req.UnitPrice != nil {
		offer.UnitPrice = decimal.NewNullDecimal(*req.UnitPrice)
	}

	var (
		p       *bidding.Participation
		intents []notification.Intent
	)
	err := s.withLock(ctx, biddingKey(req.BiddingID), func() error {
		b, err := s.biddingRepo.GetByID(ctx, req.BiddingID)
		if err != nil {
			return err
		}

		inv, err := s.invitationRepo.Get(ctx, req.BiddingID, req.SupplierID)
		switch {
		case err == nil && inv.IsRejected():
			return shared.ErrInvitationRejected
		case err != nil && !errors.Is(err, shared.ErrInvitationNotFound):
			return err
		}

		now := s.now()
		p, err = bidding.NewParticipation(b, req.SupplierID, offer, now)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("bidding_id", b.ID.String()).
				Str("status", string(b.Status)).
				Msg("Participation rejected")
			return err
		}

		if err := s.participationRepo.Create(ctx, p); err != nil {
			s.logger.Warn().Err(err).Str("bidding_id", b.ID.String()).Str("supplier_id", req.SupplierID.String()).Msg("Failed to store participation")
			return err
		}

		intents = notification.ParticipationSubmitted(b, p, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("participation_id", p.ID.String()).
		Str("total", p.Amounts.Total.String()).
		Msg("Participation submitted")
	s.publish(ctx, intents)
	return p, intents, nil
}

// ConfirmParticipation marks a participation as acknowledged by the buyer
func (s *ParticipationService) ConfirmParticipation(ctx context.Context, participationID uuid.UUID, actor shared.Actor) (*bidding.Participation, []notification.Intent, error) {
	p, err := s.participationRepo.GetByID(ctx, participationID)
	if err != nil {
		return nil, nil, err
	}

	var intents []notification.Intent
	err = s.withLock(ctx, biddingKey(p.BiddingID), func() error {
		b, err := s.biddingRepo.GetByID(ctx, p.BiddingID)
		if err != nil {
			return err
		}
		if err := s.policy.Check(actor, policy.ParticipationConfirm, string(b.Status)); err != nil {
			return err
		}

		// re-read under the lock
		p, err = s.participationRepo.GetByID(ctx, participationID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := p.Confirm(now); err != nil {
			return err
		}
		if err := s.participationRepo.Update(ctx, p); err != nil {
			return err
		}

		intents = notification.ParticipationConfirmed(b, p, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("participation_id", p.ID.String()).Msg("Participation confirmed")
	s.publish(ctx, intents)
	return p, intents, nil
}

// WithdrawParticipation retracts a participation while the bidding is ONGOING
func (s *ParticipationService) WithdrawParticipation(ctx context.Context, participationID uuid.UUID, reason string, actor shared.Actor) ([]notification.Intent, error) {
	p, err := s.participationRepo.GetByID(ctx, participationID)
	if err != nil {
		return nil, err
	}
	if err := requireSupplier(actor, p.SupplierID); err != nil {
		return nil, err
	}

	var intents []notification.Intent
	err = s.withLock(ctx, biddingKey(p.BiddingID), func() error {
		b, err := s.biddingRepo.GetByID(ctx, p.BiddingID)
		if err != nil {
			return err
		}
		p, err = s.participationRepo.GetByID(ctx, participationID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := p.Withdraw(b, reason, now); err != nil {
			s.logger.Warn().Err(err).Str("participation_id", participationID.String()).Msg("Withdrawal rejected")
			return err
		}
		if err := s.participationRepo.Update(ctx, p); err != nil {
			return err
		}

		intents = notification.ParticipationWithdrawn(b, p, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("participation_id", participationID.String()).Str("reason", reason).Msg("Participation withdrawn")
	s.publish(ctx, intents)
	return intents, nil
}

// ListParticipations retrieves the participations of a bidding
func (s *ParticipationService) ListParticipations(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Participation, error) {
	if _, err := s.biddingRepo.GetByID(ctx, biddingID); err != nil {
		return nil, err
	}
	return s.participationRepo.ListByBidding(ctx, biddingID)
}
