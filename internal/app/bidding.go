package app

import (
	"context"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/notification"
	"bidding-service/internal/domain/numbering"
	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/inbound"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BiddingService implements the bidding notice use cases and the closing
// hook used by the scheduler
type BiddingService struct {
	lifecycle
	biddingRepo outbound.BiddingRepository
	sequencer   outbound.Sequencer
	scheduler   outbound.ClosingScheduler
}

type BiddingServiceParams struct {
	BiddingRepo outbound.BiddingRepository
	Sequencer   outbound.Sequencer
	Scheduler   outbound.ClosingScheduler
	Locker      outbound.Locker
	Policy      *policy.Policy
	Notifier    IntentSink
	Clock       shared.Clock
	Logger      zerolog.Logger
}

// NewBiddingService creates a new bidding service
func NewBiddingService(params BiddingServiceParams) *BiddingService {
	logger := params.Logger.With().Str("component", "bidding_service").Logger()
	return &BiddingService{
		lifecycle:   newLifecycle(params.Locker, params.Policy, params.Notifier, params.Clock, logger),
		biddingRepo: params.BiddingRepo,
		sequencer:   params.Sequencer,
		scheduler:   params.Scheduler,
	}
}

// CreateBidding creates a new PENDING bidding
func (service *BiddingService) CreateBidding(ctx context.Context, req inbound.CreateBiddingRequest, actor shared.Actor) (*bidding.Bidding, []notification.Intent, error) {
	service.logger.Info().
		Str("actor_id", actor.ID.String()).
		Str("title", req.Title).
		Str("method", string(req.Method)).
		Int64("quantity", req.Quantity).
		Msg("Attempting to create bidding")

	if err := service.policy.Check(actor, policy.BiddingCreate, ""); err != nil {
		service.logger.Warn().Err(err).Str("actor_id", actor.ID.String()).Msg("Bidding creation denied")
		return nil, nil, err
	}

	draft := bidding.Draft{
		Title:       req.Title,
		Description: req.Description,
		Method:      req.Method,
		Quantity:    req.Quantity,
		Period:      shared.Period{Start: req.StartDate, End: req.EndDate},
	}
	if req.UnitPrice != nil {
		draft.UnitPrice = decimal.NewNullDecimal(*req.UnitPrice)
	}
	if err := draft.Validate(); err != nil {
		service.logger.Warn().Err(err).Msg("Invalid bidding draft")
		return nil, nil, err
	}

	now := service.now()
	bidNumber, err := nextNumber(ctx, service.sequencer, numbering.PrefixBidding, now)
	if err != nil {
		service.logger.Error().Err(err).Msg("Failed to generate bid number")
		return nil, nil, err
	}

	b, err := bidding.New(draft, bidNumber, actor, now)
	if err != nil {
		return nil, nil, err
	}

	record := bidding.NewHistoryRecord(b.ID, "", string(b.Status), actor, "created", now)
	if err := service.biddingRepo.Create(ctx, b, record); err != nil {
		service.logger.Error().Err(err).Str("bidding_id", b.ID.String()).Msg("Failed to save bidding")
		return nil, nil, err
	}

	service.logger.Info().
		Str("bidding_id", b.ID.String()).
		Str("bid_number", b.BidNumber).
		Str("total", b.Amounts.Total.String()).
		Msg("Bidding created successfully")

	service.scheduleClosing(ctx, b)

	intents := notification.BiddingCreated(b, now)
	service.publish(ctx, intents)
	return b, intents, nil
}

// UpdateBidding edits the terms of an open bidding
func (service *BiddingService) UpdateBidding(ctx context.Context, biddingID uuid.UUID, req inbound.UpdateBiddingRequest, actor shared.Actor) (*bidding.Bidding, []notification.Intent, error) {
	var (
		b       *bidding.Bidding
		intents []notification.Intent
	)

	err := service.withLock(ctx, biddingKey(biddingID), func() error {
		var err error
		b, err = service.biddingRepo.GetByID(ctx, biddingID)
		if err != nil {
			return err
		}

		if err := service.policy.Check(actor, policy.BiddingModify, string(b.Status)); err != nil {
			service.logger.Warn().Err(err).Str("bidding_id", biddingID.String()).Str("status", string(b.Status)).Msg("Bidding modification denied")
			return err
		}

		changes := bidding.Changes{
			Title:       req.Title,
			Description: req.Description,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
		}
		if req.StartDate != nil || req.EndDate != nil {
			period := b.Period
			if req.StartDate != nil {
				period.Start = *req.StartDate
			}
			if req.EndDate != nil {
				period.End = *req.EndDate
			}
			changes.Period = &period
		}

		now := service.now()
		if err := b.Apply(changes, now); err != nil {
			service.logger.Warn().Err(err).Str("bidding_id", biddingID.String()).Msg("Invalid bidding changes")
			return err
		}

		if err := service.biddingRepo.Update(ctx, b); err != nil {
			service.logger.Error().Err(err).Str("bidding_id", biddingID.String()).Msg("Failed to update bidding")
			return err
		}

		intents = notification.BiddingUpdated(b, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	service.logger.Info().Str("bidding_id", b.ID.String()).Str("total", b.Amounts.Total.String()).Msg("Bidding updated")
	if req.EndDate != nil {
		service.scheduleClosing(ctx, b)
	}
	service.publish(ctx, intents)
	return b, intents, nil
}

// ChangeBiddingStatus applies one transition of the bidding automaton
func (service *BiddingService) ChangeBiddingStatus(ctx context.Context, biddingID uuid.UUID, target bidding.Status, reason string, actor shared.Actor) (*bidding.Bidding, []notification.Intent, error) {
	var (
		b       *bidding.Bidding
		intents []notification.Intent
	)

	err := service.withLock(ctx, biddingKey(biddingID), func() error {
		var err error
		b, err = service.biddingRepo.GetByID(ctx, biddingID)
		if err != nil {
			return err
		}
		intents, err = service.transition(ctx, b, target, reason, actor)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if b.Status.Terminal() && service.scheduler != nil {
		if err := service.scheduler.CancelClosing(ctx, b.ID); err != nil {
			service.logger.Error().Err(err).Str("bidding_id", b.ID.String()).Msg("Failed to remove bidding from closing schedule")
		}
	}

	service.publish(ctx, intents)
	return b, intents, nil
}

// transition must run under the bidding lock
func (service *BiddingService) transition(ctx context.Context, b *bidding.Bidding, target bidding.Status, reason string, actor shared.Actor) ([]notification.Intent, error) {
	from := b.Status
	now := service.now()

	record, err := b.Transition(target, actor, reason, service.policy, now)
	if err != nil {
		service.logger.Warn().
			Err(err).
			Str("bidding_id", b.ID.String()).
			Str("from", string(from)).
			Str("to", string(target)).
			Str("actor_id", actor.ID.String()).
			Msg("Bidding transition rejected")
		return nil, err
	}

	if err := service.biddingRepo.Update(ctx, b, record); err != nil {
		service.logger.Error().Err(err).Str("bidding_id", b.ID.String()).Msg("Failed to persist bidding transition")
		return nil, err
	}

	service.logger.Info().
		Str("bidding_id", b.ID.String()).
		Str("from", string(from)).
		Str("to", string(target)).
		Str("actor_id", actor.ID.String()).
		Msg("Bidding status changed")

	return notification.BiddingStatusChanged(b, from, reason, now), nil
}

// GetBidding retrieves a bidding by ID
func (service *BiddingService) GetBidding(ctx context.Context, biddingID uuid.UUID) (*bidding.Bidding, error) {
	service.logger.Debug().Str("bidding_id", biddingID.String()).Msg("Retrieving bidding")
	return service.biddingRepo.GetByID(ctx, biddingID)
}

// ListBiddings retrieves a page of biddings
func (service *BiddingService) ListBiddings(ctx context.Context, req inbound.ListBiddingsRequest) ([]*bidding.Bidding, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	for _, s := range req.Statuses {
		if !s.Valid() {
			return nil, shared.Validation("unknown bidding status %q", s)
		}
	}

	return service.biddingRepo.List(ctx, req.Statuses, req.Page, req.PageSize)
}

// GetBiddingHistory retrieves the status log of a bidding
func (service *BiddingService) GetBiddingHistory(ctx context.Context, biddingID uuid.UUID) ([]bidding.HistoryRecord, error) {
	return service.biddingRepo.History(ctx, biddingID)
}

// CloseExpired closes an ONGOING bidding whose period has ended, acting as
// the system. Used by the closing scheduler.
func (service *BiddingService) CloseExpired(ctx context.Context, biddingID uuid.UUID) (*bidding.Bidding, error) {
	service.logger.Info().Str("bidding_id", biddingID.String()).Msg("Closing expired bidding")

	b, _, err := service.ChangeBiddingStatus(ctx, biddingID, bidding.StatusClosed, "bidding period ended", shared.SystemActor())
	return b, err
}

func (service *BiddingService) scheduleClosing(ctx context.Context, b *bidding.Bidding) {
	if service.scheduler == nil {
		return
	}
	if err := service.scheduler.ScheduleClosing(ctx, b.ID, b.Period.End); err != nil {
		// Closing can still be done manually
		service.logger.Error().Err(err).Str("bidding_id", b.ID.String()).Msg("Failed to schedule bidding closing")
		return
	}
	service.logger.Debug().
		Str("bidding_id", b.ID.String()).
		Time("end", b.Period.End).
		Msg("Bidding scheduled for closing")
}
