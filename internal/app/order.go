package app

import (
	"context"
	"errors"

	"bidding-service/internal/domain/notification"
	"bidding-service/internal/domain/numbering"
	"bidding-service/internal/domain/order"
	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderService implements purchase order issuing and approval
type OrderService struct {
	lifecycle
	biddingRepo  outbound.BiddingRepository
	contractRepo outbound.ContractRepository
	orderRepo    outbound.OrderRepository
	sequencer    outbound.Sequencer
}

type OrderServiceParams struct {
	BiddingRepo  outbound.BiddingRepository
	ContractRepo outbound.ContractRepository
	OrderRepo    outbound.OrderRepository
	Sequencer    outbound.Sequencer
	Locker       outbound.Locker
	Policy       *policy.Policy
	Notifier     IntentSink
	Clock        shared.Clock
	Logger       zerolog.Logger
}

// NewOrderService creates a new order service
func NewOrderService(params OrderServiceParams) *OrderService {
	logger := params.Logger.With().Str("component", "order_service").Logger()
	return &OrderService{
		lifecycle:    newLifecycle(params.Locker, params.Policy, params.Notifier, params.Clock, logger),
		biddingRepo:  params.BiddingRepo,
		contractRepo: params.ContractRepo,
		orderRepo:    params.OrderRepo,
		sequencer:    params.Sequencer,
	}
}

// IssueOrder draws a purchase order from a fully signed contract
func (s *OrderService) IssueOrder(ctx context.Context, contractID uuid.UUID, actor shared.Actor) (*order.Order, []notification.Intent, error) {
	s.logger.Info().Str("contract_id", contractID.String()).Str("actor_id", actor.ID.String()).Msg("Attempting to issue order")

	var (
		o       *order.Order
		intents []notification.Intent
	)
	err := s.withLock(ctx, contractKey(contractID), func() error {
		c, err := s.contractRepo.GetByID(ctx, contractID)
		if err != nil {
			return err
		}
		if !c.ReadyForOrder() {
			s.logger.Warn().Str("contract_id", contractID.String()).Str("status", string(c.Status)).Msg("Contract not ready for order")
			return shared.ErrContractNotSigned
		}
		if err := s.policy.Check(actor, policy.OrderCreate, string(c.Status)); err != nil {
			s.logger.Warn().Err(err).Str("actor_id", actor.ID.String()).Msg("Order issue denied")
			return err
		}

		existing, err := s.orderRepo.GetByContract(ctx, contractID)
		switch {
		case err == nil && existing != nil:
			return shared.ErrDuplicateOrder
		case err != nil && !errors.Is(err, shared.ErrOrderNotFound):
			return err
		}

		b, err := s.biddingRepo.GetByID(ctx, c.BiddingID)
		if err != nil {
			return err
		}

		now := s.now()
		number, err := nextNumber(ctx, s.sequencer, numbering.PrefixOrder, now)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to generate order number")
			return err
		}

		o, err = order.Issue(c, number, actor, now)
		if err != nil {
			return err
		}
		if err := s.orderRepo.Create(ctx, o); err != nil {
			s.logger.Warn().Err(err).Str("contract_id", contractID.String()).Msg("Failed to store order")
			return err
		}

		intents = notification.OrderIssued(o, b, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("order_id", o.ID.String()).
		Str("order_number", o.OrderNumber).
		Str("total", o.Amounts.Total.String()).
		Msg("Order issued")
	s.publish(ctx, intents)
	return o, intents, nil
}

// ApproveOrder approves or rejects a requested order
func (s *OrderService) ApproveOrder(ctx context.Context, orderID uuid.UUID, approve bool, comment string, actor shared.Actor) (*order.Order, []notification.Intent, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	var intents []notification.Intent
	err = s.withLock(ctx, contractKey(o.ContractID), func() error {
		o, err = s.orderRepo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.policy.Check(actor, policy.OrderApprove, string(o.Status)); err != nil {
			s.logger.Warn().Err(err).Str("order_id", orderID.String()).Msg("Order decision denied")
			return err
		}

		now := s.now()
		if err := o.Decide(approve, comment, actor, now); err != nil {
			return err
		}
		if err := s.orderRepo.Update(ctx, o); err != nil {
			return err
		}

		intents = notification.OrderDecided(o, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("order_id", orderID.String()).Str("status", string(o.Status)).Msg("Order decided")
	s.publish(ctx, intents)
	return o, intents, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}
