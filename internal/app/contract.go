package app

import (
	"context"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/contract"
	"bidding-service/internal/domain/notification"
	"bidding-service/internal/domain/numbering"
	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/inbound"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContractService implements contract drafting and signing
type ContractService struct {
	lifecycle
	biddingRepo       outbound.BiddingRepository
	participationRepo outbound.ParticipationRepository
	contractRepo      outbound.ContractRepository
	sequencer         outbound.Sequencer
}

type ContractServiceParams struct {
	BiddingRepo       outbound.BiddingRepository
	ParticipationRepo outbound.ParticipationRepository
	ContractRepo      outbound.ContractRepository
	Sequencer         outbound.Sequencer
	Locker            outbound.Locker
	Policy            *policy.Policy
	Notifier          IntentSink
	Clock             shared.Clock
	Logger            zerolog.Logger
}

// NewContractService creates a new contract service
func NewContractService(params ContractServiceParams) *ContractService {
	logger := params.Logger.With().Str("component", "contract_service").Logger()
	return &ContractService{
		lifecycle:         newLifecycle(params.Locker, params.Policy, params.Notifier, params.Clock, logger),
		biddingRepo:       params.BiddingRepo,
		participationRepo: params.ParticipationRepo,
		contractRepo:      params.ContractRepo,
		sequencer:         params.Sequencer,
	}
}

// DraftContract creates a DRAFT contract from the winning participation
func (service *ContractService) DraftContract(ctx context.Context, req inbound.DraftContractRequest, actor shared.Actor) (*contract.Contract, []notification.Intent, error) {
	service.logger.Info().
		Str("bidding_id", req.BiddingID.String()).
		Str("participation_id", req.ParticipationID.String()).
		Str("actor_id", actor.ID.String()).
		Msg("Attempting to draft contract")

	var (
		c       *contract.Contract
		intents []notification.Intent
	)
	// the bidding lock keeps the winner flag stable while drafting
	err := service.withLock(ctx, biddingKey(req.BiddingID), func() error {
		b, err := service.biddingRepo.GetByID(ctx, req.BiddingID)
		if err != nil {
			return err
		}
		if err := service.policy.Check(actor, policy.ContractCreate, string(b.Status)); err != nil {
			service.logger.Warn().Err(err).Str("bidding_id", b.ID.String()).Str("status", string(b.Status)).Msg("Contract drafting denied")
			return err
		}

		p, err := service.participationRepo.GetByID(ctx, req.ParticipationID)
		if err != nil {
			return err
		}

		terms := contract.Terms{DeliveryDate: req.DeliveryDate}
		if req.StartDate != nil || req.EndDate != nil {
			period := b.Period
			if req.StartDate != nil {
				period.Start = *req.StartDate
			}
			if req.EndDate != nil {
				period.End = *req.EndDate
			}
			terms.Period = &period
		}

		now := service.now()
		number, err := nextNumber(ctx, service.sequencer, numbering.PrefixContract, now)
		if err != nil {
			service.logger.Error().Err(err).Msg("Failed to generate transaction number")
			return err
		}

		c, err = contract.Draft(b, p, number, terms, actor, now)
		if err != nil {
			service.logger.Warn().Err(err).Str("participation_id", p.ID.String()).Msg("Contract draft rejected")
			return err
		}

		record := bidding.NewHistoryRecord(c.ID, "", string(c.Status), actor, "drafted", now)
		if err := service.contractRepo.Create(ctx, c, record); err != nil {
			service.logger.Warn().Err(err).Str("bidding_id", b.ID.String()).Msg("Failed to store contract")
			return err
		}

		intents = notification.ContractDrafted(c, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	service.logger.Info().
		Str("contract_id", c.ID.String()).
		Str("transaction_number", c.TransactionNumber).
		Str("total", c.Amounts.Total.String()).
		Msg("Contract drafted")
	service.publish(ctx, intents)
	return c, intents, nil
}

// ChangeContractStatus applies a manual contract transition
func (service *ContractService) ChangeContractStatus(ctx context.Context, contractID uuid.UUID, target contract.Status, reason string, actor shared.Actor) (*contract.Contract, []notification.Intent, error) {
	var (
		c       *contract.Contract
		intents []notification.Intent
	)
	err := service.withLock(ctx, contractKey(contractID), func() error {
		var err error
		c, err = service.contractRepo.GetByID(ctx, contractID)
		if err != nil {
			return err
		}
		if err := service.policy.Check(actor, policy.ContractChangeStatus, string(c.Status)); err != nil {
			service.logger.Warn().Err(err).Str("contract_id", contractID.String()).Msg("Contract status change denied")
			return err
		}

		from := c.Status
		now := service.now()
		record, err := c.Transition(target, actor, reason, now)
		if err != nil {
			service.logger.Warn().
				Err(err).
				Str("contract_id", contractID.String()).
				Str("from", string(from)).
				Str("to", string(target)).
				Msg("Contract transition rejected")
			return err
		}
		if err := service.contractRepo.Update(ctx, c, record); err != nil {
			return err
		}

		intents = notification.ContractStatusChanged(c, from, reason, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	service.logger.Info().Str("contract_id", contractID.String()).Str("status", string(c.Status)).Msg("Contract status changed")
	service.publish(ctx, intents)
	return c, intents, nil
}

// SignContract records one side's signature. The buyer side needs the
// signing rank, the supplier side must be the contract's supplier.
func (service *ContractService) SignContract(ctx context.Context, contractID uuid.UUID, role contract.Role, signature string, actor shared.Actor) (*contract.Contract, []notification.Intent, error) {
	if !role.Valid() {
		return nil, nil, shared.Validation("unknown signing role %q", role)
	}

	var (
		c       *contract.Contract
		intents []notification.Intent
	)
	err := service.withLock(ctx, contractKey(contractID), func() error {
		var err error
		c, err = service.contractRepo.GetByID(ctx, contractID)
		if err != nil {
			return err
		}

		switch role {
		case contract.RoleBuyer:
			if actor.IsSupplier() {
				return shared.Permission("suppliers cannot sign on the buyer side")
			}
			if err := service.policy.Check(actor, policy.ContractSignBuyer, string(c.Status)); err != nil {
				// an out-of-state signature is a state problem, not a rank problem
				if c.Status != contract.StatusInProgress {
					return shared.ErrContractNotInProgress
				}
				return err
			}
		case contract.RoleSupplier:
			if err := requireSupplier(actor, c.SupplierID); err != nil {
				return err
			}
		}

		now := service.now()
		records, err := c.Sign(role, signature, actor, now)
		if err != nil {
			service.logger.Warn().Err(err).Str("contract_id", contractID.String()).Str("role", string(role)).Msg("Signature rejected")
			return err
		}
		if err := service.contractRepo.Update(ctx, c, records...); err != nil {
			return err
		}

		intents = notification.ContractSigned(c, role, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	service.logger.Info().
		Str("contract_id", contractID.String()).
		Str("role", string(role)).
		Str("status", string(c.Status)).
		Msg("Contract signed")
	service.publish(ctx, intents)
	return c, intents, nil
}

// GetContract retrieves a contract by ID
func (service *ContractService) GetContract(ctx context.Context, contractID uuid.UUID) (*contract.Contract, error) {
	return service.contractRepo.GetByID(ctx, contractID)
}

// GetContractHistory retrieves the status log of a contract
func (service *ContractService) GetContractHistory(ctx context.Context, contractID uuid.UUID) ([]bidding.HistoryRecord, error) {
	return service.contractRepo.History(ctx, contractID)
}
