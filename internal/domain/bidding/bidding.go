package bidding

import (
	"strings"
	"time"

	"bidding-service/internal/domain/price"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method determines who sets the unit price.
type Method string

const (
	MethodFixedPrice      Method = "FIXED_PRICE"
	MethodPriceSuggestion Method = "PRICE_SUGGESTION"
)

func (m Method) Valid() bool {
	return m == MethodFixedPrice || m == MethodPriceSuggestion
}

// Bidding represents a published procurement notice
type Bidding struct {
	ID           uuid.UUID           `json:"id"`
	BidNumber    string              `json:"bid_number"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Method       Method              `json:"method"`
	Quantity     int64               `json:"quantity"`
	UnitPrice    decimal.NullDecimal `json:"unit_price"`
	Amounts      price.Amounts       `json:"amounts"`
	Period       shared.Period       `json:"period"`
	Status       Status              `json:"status"`
	CreatorID    uuid.UUID           `json:"creator_id"`
	DepartmentID uuid.UUID           `json:"department_id"`
	Version      int64               `json:"version"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Draft is the validated input for a new bidding.
type Draft struct {
	Title       string
	Description string
	Method      Method
	Quantity    int64
	UnitPrice   decimal.NullDecimal
	Period      shared.Period
}

// Validate checks the draft before any numbering or storage happens.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return shared.Validation("bidding title is required")
	}
	if !d.Method.Valid() {
		return shared.Validation("unknown bidding method %q", d.Method)
	}
	if d.Quantity < 1 {
		return shared.Validation("bidding quantity must be at least 1, got %d", d.Quantity)
	}
	if err := d.Period.Validate(); err != nil {
		return err
	}
	if d.Method == MethodFixedPrice {
		if !d.UnitPrice.Valid {
			return shared.Validation("fixed price biddings require a unit price")
		}
		if err := price.CheckUnitPrice(d.UnitPrice.Decimal); err != nil {
			return err
		}
	}
	return nil
}

// New builds a PENDING bidding from a validated draft.
func New(d Draft, bidNumber string, creator shared.Actor, now time.Time) (*Bidding, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	unitPrice := d.UnitPrice
	if d.Method == MethodPriceSuggestion {
		unitPrice = decimal.NullDecimal{}
	}

	b := &Bidding{
		ID:           uuid.New(),
		BidNumber:    bidNumber,
		Title:        strings.TrimSpace(d.Title),
		Description:  d.Description,
		Method:       d.Method,
		Quantity:     d.Quantity,
		UnitPrice:    unitPrice,
		Period:       d.Period,
		Status:       StatusPending,
		CreatorID:    creator.ID,
		DepartmentID: creator.DepartmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	b.Reprice()
	return b, nil
}

// Reprice recomputes the monetary fields from unit price and quantity.
func (b *Bidding) Reprice() {
	b.Amounts = price.Lenient(b.UnitPrice, &b.Quantity)
}

// Changes carries the editable fields of a bidding. Nil means unchanged.
type Changes struct {
	Title       *string
	Description *string
	Quantity    *int64
	UnitPrice   *decimal.Decimal
	Period      *shared.Period
}

// Apply edits the bidding and reprices it.
func (b *Bidding) Apply(c Changes, now time.Time) error {
	if b.Status.Terminal() {
		return shared.State("bidding %s can no longer be modified in status %s", b.ID, b.Status)
	}

	next := *b
	if c.Title != nil {
		next.Title = strings.TrimSpace(*c.Title)
	}
	if c.Description != nil {
		next.Description = *c.Description
	}
	if c.Quantity != nil {
		next.Quantity = *c.Quantity
	}
	if c.Period != nil {
		next.Period = *c.Period
	}
	if c.UnitPrice != nil {
		if b.Method == MethodPriceSuggestion {
			return shared.Validation("price suggestion biddings carry no unit price")
		}
		next.UnitPrice = decimal.NewNullDecimal(*c.UnitPrice)
	}

	draft := Draft{
		Title:     next.Title,
		Method:    next.Method,
		Quantity:  next.Quantity,
		UnitPrice: next.UnitPrice,
		Period:    next.Period,
	}
	if err := draft.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = now
	next.Reprice()
	*b = next
	return nil
}

// AcceptsParticipation reports whether a submission at now would be valid.
func (b *Bidding) AcceptsParticipation(now time.Time) error {
	if b.Status != StatusOngoing {
		return shared.ErrBiddingNotOpen
	}
	if !b.Period.Contains(now) {
		return shared.ErrOutsideBiddingPeriod
	}
	return nil
}

// IsClosed returns true once the bidding stopped accepting participations normally
func (b *Bidding) IsClosed() bool {
	return b.Status == StatusClosed
}
