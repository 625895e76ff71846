package app

import (
	"context"

	"bidding-service/internal/domain/award"
	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/notification"
	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/inbound"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AwardService implements evaluation and winner selection
type AwardService struct {
	lifecycle
	biddingRepo       outbound.BiddingRepository
	participationRepo outbound.ParticipationRepository
	evaluationRepo    outbound.EvaluationRepository
}

type AwardServiceParams struct {
	BiddingRepo       outbound.BiddingRepository
	ParticipationRepo outbound.ParticipationRepository
	EvaluationRepo    outbound.EvaluationRepository
	Locker            outbound.Locker
	Policy            *policy.Policy
	Notifier          IntentSink
	Clock             shared.Clock
	Logger            zerolog.Logger
}

// NewAwardService creates a new award service
func NewAwardService(params AwardServiceParams) *AwardService {
	logger := params.Logger.With().Str("component", "award_service").Logger()
	return &AwardService{
		lifecycle:         newLifecycle(params.Locker, params.Policy, params.Notifier, params.Clock, logger),
		biddingRepo:       params.BiddingRepo,
		participationRepo: params.ParticipationRepo,
		evaluationRepo:    params.EvaluationRepo,
	}
}

// Evaluate scores a participation of a CLOSED bidding
func (s *AwardService) Evaluate(ctx context.Context, req inbound.EvaluateRequest, actor shared.Actor) (*bidding.Evaluation, []notification.Intent, error) {
	evaluatorID := req.EvaluatorID
	if evaluatorID == uuid.Nil {
		evaluatorID = actor.ID
	}
	if evaluatorID != actor.ID {
		return nil, nil, shared.Permission("evaluations are recorded under the acting member")
	}

	p, err := s.participationRepo.GetByID(ctx, req.ParticipationID)
	if err != nil {
		return nil, nil, err
	}

	var (
		e       *bidding.Evaluation
		intents []notification.Intent
	)
	err = s.withLock(ctx, biddingKey(p.BiddingID), func() error {
		b, err := s.biddingRepo.GetByID(ctx, p.BiddingID)
		if err != nil {
			return err
		}
		if b.Status != bidding.StatusClosed {
			return shared.State("bidding %s must be CLOSED to evaluate, is %s", b.BidNumber, b.Status)
		}
		if err := s.policy.Check(actor, policy.BiddingEvaluate, string(b.Status)); err != nil {
			s.logger.Warn().Err(err).Str("actor_id", actor.ID.String()).Msg("Evaluation denied")
			return err
		}

		p, err = s.participationRepo.GetByID(ctx, req.ParticipationID)
		if err != nil {
			return err
		}

		now := s.now()
		e, err = bidding.NewEvaluation(b, p, evaluatorID, req.Scores, req.Comment, now)
		if err != nil {
			s.logger.Warn().Err(err).Str("participation_id", p.ID.String()).Msg("Evaluation rejected")
			return err
		}
		if err := s.evaluationRepo.Create(ctx, e); err != nil {
			s.logger.Warn().Err(err).Str("participation_id", p.ID.String()).Msg("Failed to store evaluation")
			return err
		}

		intents = notification.EvaluationRecorded(b, e, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("evaluation_id", e.ID.String()).
		Str("participation_id", e.ParticipationID.String()).
		Int("total_score", e.TotalScore).
		Msg("Evaluation recorded")
	s.publish(ctx, intents)
	return e, intents, nil
}

// SelectWinner flags the best-scored participation of a CLOSED bidding as
// the single winner.
func (s *AwardService) SelectWinner(ctx context.Context, biddingID uuid.UUID, actor shared.Actor) (*bidding.Evaluation, []notification.Intent, error) {
	s.logger.Info().Str("bidding_id", biddingID.String()).Str("actor_id", actor.ID.String()).Msg("Selecting winner")

	var (
		winner  *bidding.Evaluation
		intents []notification.Intent
	)
	err := s.withLock(ctx, biddingKey(biddingID), func() error {
		b, err := s.biddingRepo.GetByID(ctx, biddingID)
		if err != nil {
			return err
		}

		if !b.IsClosed() {
			s.logger.Warn().Str("bidding_id", b.ID.String()).Str("status", string(b.Status)).Msg("Winner selection before close")
			return shared.State("bidding %s must be CLOSED to select a winner, it is %s", b.BidNumber, b.Status)
		}
		if err := s.policy.Check(actor, policy.BiddingSelectWinner, string(b.Status)); err != nil {
			s.logger.Warn().Err(err).Str("actor_id", actor.ID.String()).Msg("Winner selection denied")
			return err
		}

		evaluations, err := s.evaluationRepo.ListByBidding(ctx, b.ID)
		if err != nil {
			return err
		}
		participations, err := s.participationRepo.ListByBidding(ctx, b.ID)
		if err != nil {
			return err
		}
		result, err := award.Select(evaluations, participations)
		if err != nil {
			s.logger.Warn().Err(err).Str("bidding_id", b.ID.String()).Msg("No eligible evaluations")
			return err
		}

		now := s.now()
		chosen := result.Winner
		if err := s.participationRepo.AssignWinner(ctx, b.ID, chosen.Participation.ID, chosen.Evaluation.ID, now); err != nil {
			s.logger.Error().Err(err).Str("bidding_id", b.ID.String()).Msg("Failed to assign winner")
			return err
		}

		selectedAt := now
		winner = chosen.Evaluation
		winner.Selected = true
		winner.SelectedAt = &selectedAt
		chosen.Participation.Winner = true
		chosen.Participation.WinnerAt = &selectedAt

		intents = notification.WinnerSelected(b, chosen.Participation, winner, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("bidding_id", biddingID.String()).
		Str("participation_id", winner.ParticipationID.String()).
		Int("total_score", winner.TotalScore).
		Msg("Winner selected")
	s.publish(ctx, intents)
	return winner, intents, nil
}

// ListEvaluations retrieves the evaluations of a bidding
func (s *AwardService) ListEvaluations(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Evaluation, error) {
	if _, err := s.biddingRepo.GetByID(ctx, biddingID); err != nil {
		return nil, err
	}
	return s.evaluationRepo.ListByBidding(ctx, biddingID)
}
