package bidding

import (
	"strings"
	"time"

	"bidding-service/internal/domain/price"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Participation is a supplier's bid against a bidding
type Participation struct {
	ID             uuid.UUID       `json:"id"`
	BiddingID      uuid.UUID       `json:"bidding_id"`
	SupplierID     uuid.UUID       `json:"supplier_id"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int64           `json:"quantity"`
	Amounts        price.Amounts   `json:"amounts"`
	Comment        string          `json:"comment,omitempty"`
	SubmittedAt    time.Time       `json:"submitted_at"`
	Confirmed      bool            `json:"confirmed"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	Evaluated      bool            `json:"evaluated"`
	Score          *int            `json:"score,omitempty"`
	Winner         bool            `json:"winner"`
	WinnerAt       *time.Time      `json:"winner_at,omitempty"`
	OrderCreated   bool            `json:"order_created"`
	Withdrawn      bool            `json:"withdrawn"`
	WithdrawnAt    *time.Time      `json:"withdrawn_at,omitempty"`
	WithdrawReason string          `json:"withdraw_reason,omitempty"`
}

// Offer is what a supplier submits.
type Offer struct {
	UnitPrice decimal.NullDecimal
	Quantity  int64
	Comment   string
}

// NewParticipation validates an offer against the bidding and prices it.
func NewParticipation(b *Bidding, supplierID uuid.UUID, offer Offer, now time.Time) (*Participation, error) {
	if err := b.AcceptsParticipation(now); err != nil {
		return nil, err
	}

	quantity := offer.Quantity
	if quantity == 0 {
		quantity = b.Quantity
	}
	if quantity < 0 {
		return nil, shared.Validation("quantity must not be negative, got %d", quantity)
	}

	var unitPrice decimal.Decimal
	switch b.Method {
	case MethodFixedPrice:
		unitPrice = b.UnitPrice.Decimal
		if offer.UnitPrice.Valid && !offer.UnitPrice.Decimal.Equal(unitPrice) {
			return nil, shared.Validation("fixed price bidding %s only accepts unit price %s", b.BidNumber, unitPrice)
		}
	case MethodPriceSuggestion:
		if !offer.UnitPrice.Valid {
			return nil, shared.Validation("price suggestion bidding %s requires a unit price", b.BidNumber)
		}
		unitPrice = offer.UnitPrice.Decimal
	}

	amounts, err := price.Compute(unitPrice, quantity)
	if err != nil {
		return nil, err
	}

	return &Participation{
		ID:          uuid.New(),
		BiddingID:   b.ID,
		SupplierID:  supplierID,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		Amounts:     amounts,
		Comment:     strings.TrimSpace(offer.Comment),
		SubmittedAt: now,
	}, nil
}

// Confirm marks the participation as acknowledged by the buyer.
func (p *Participation) Confirm(now time.Time) error {
	if p.Withdrawn {
		return shared.ErrParticipationWithdrawn
	}
	confirmedAt := now
	p.Confirmed = true
	p.ConfirmedAt = &confirmedAt
	return nil
}

// Withdraw retracts the participation while the bidding is still open.
func (p *Participation) Withdraw(b *Bidding, reason string, now time.Time) error {
	if b.Status != StatusOngoing {
		return shared.State("participations can only be withdrawn while the bidding is ONGOING, bidding is %s", b.Status)
	}
	if p.Withdrawn {
		return shared.ErrParticipationWithdrawn
	}
	withdrawnAt := now
	p.Withdrawn = true
	p.WithdrawnAt = &withdrawnAt
	p.WithdrawReason = reason
	return nil
}

// Active reports whether the participation still competes.
func (p *Participation) Active() bool {
	return !p.Withdrawn
}
