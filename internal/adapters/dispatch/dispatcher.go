package dispatch

import (
	"context"
	"errors"
	"fmt"

	"bidding-service/internal/domain/notification"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dispatcher resolves an intent's recipient selector to member ids and
// delivers one event per member on that member's broadcast topic. When a
// publisher is configured the intent is also forwarded unresolved.
type Dispatcher struct {
	members        outbound.MemberRepository
	invitations    outbound.InvitationRepository
	participations outbound.ParticipationRepository
	broadcaster    outbound.Broadcaster
	publisher      outbound.IntentPublisher
	logger         zerolog.Logger
}

type DispatcherParams struct {
	MemberRepo        outbound.MemberRepository
	InvitationRepo    outbound.InvitationRepository
	ParticipationRepo outbound.ParticipationRepository
	Broadcaster       outbound.Broadcaster
	Publisher         outbound.IntentPublisher
	Logger            zerolog.Logger
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(params DispatcherParams) *Dispatcher {
	return &Dispatcher{
		members:        params.MemberRepo,
		invitations:    params.InvitationRepo,
		participations: params.ParticipationRepo,
		broadcaster:    params.Broadcaster,
		publisher:      params.Publisher,
		logger:         params.Logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch delivers the intent to every resolved recipient. Delivery keeps
// going past individual failures and reports them joined.
func (d *Dispatcher) Dispatch(ctx context.Context, intent notification.Intent) error {
	var errs []error

	if d.publisher != nil {
		if err := d.publisher.PublishIntent(ctx, intent); err != nil {
			errs = append(errs, err)
		}
	}

	recipients, err := d.Resolve(ctx, intent.Recipient)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to resolve %s: %w", intent.Recipient, err))
		return errors.Join(errs...)
	}

	event := toEvent(intent)
	for _, memberID := range recipients {
		if err := d.broadcaster.Publish(ctx, outbound.MemberTopic(memberID), event); err != nil {
			errs = append(errs, err)
		}
	}

	d.logger.Debug().
		Str("intent_id", intent.ID.String()).
		Str("recipient", intent.Recipient.String()).
		Int("recipient_count", len(recipients)).
		Msg("Intent delivered")

	return errors.Join(errs...)
}

// Resolve expands a selector into member ids, without duplicates
func (d *Dispatcher) Resolve(ctx context.Context, selector notification.Selector) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	switch selector.Kind {
	case notification.SelectorMember:
		ids = append(ids, selector.MemberID)

	case notification.SelectorInvitedSuppliers:
		invitations, err := d.invitations.ListByBidding(ctx, selector.BiddingID)
		if err != nil {
			return nil, err
		}
		for _, inv := range invitations {
			if !inv.IsRejected() {
				ids = append(ids, inv.SupplierID)
			}
		}

	case notification.SelectorParticipants:
		participations, err := d.participations.ListByBidding(ctx, selector.BiddingID)
		if err != nil {
			return nil, err
		}
		for _, p := range participations {
			if !p.Withdrawn {
				ids = append(ids, p.SupplierID)
			}
		}

	case notification.SelectorDepartment:
		members, err := d.members.ListByDepartment(ctx, selector.DepartmentID, selector.MinRank)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			ids = append(ids, m.ID)
		}

	case notification.SelectorAdministrators:
		members, err := d.members.ListAdministrators(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			ids = append(ids, m.ID)
		}

	default:
		return nil, fmt.Errorf("unknown selector kind %q", selector.Kind)
	}

	return unique(ids), nil
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func toEvent(intent notification.Intent) outbound.Event {
	return outbound.Event{
		Type:      outbound.EventTypeNotification,
		BiddingID: intent.BiddingID,
		Data: map[string]interface{}{
			"intent_id": intent.ID.String(),
			"type":      string(intent.Type),
			"title":     intent.Title,
			"body":      intent.Body,
			"priority":  string(intent.Priority),
			"entity_id": intent.EntityID.String(),
		},
		Timestamp: intent.CreatedAt.Unix(),
	}
}
