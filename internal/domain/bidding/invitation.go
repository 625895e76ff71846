package bidding

import (
	"time"

	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

// Response is a supplier's answer to an invitation.
type Response string

const (
	ResponseUnanswered Response = "UNANSWERED"
	ResponseAccepted   Response = "ACCEPTED"
	ResponseRejected   Response = "REJECTED"
)

// Invitation joins a bidding and a candidate supplier
type Invitation struct {
	ID          uuid.UUID  `json:"id"`
	BiddingID   uuid.UUID  `json:"bidding_id"`
	SupplierID  uuid.UUID  `json:"supplier_id"`
	InvitedBy   uuid.UUID  `json:"invited_by"`
	Notified    bool       `json:"notified"`
	NotifiedAt  *time.Time `json:"notified_at,omitempty"`
	Response    Response   `json:"response"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewInvitation creates an unanswered invitation, marked as notified since
// the invite intent is emitted in the same operation.
func NewInvitation(biddingID, supplierID uuid.UUID, invitedBy shared.Actor, now time.Time) *Invitation {
	notifiedAt := now
	return &Invitation{
		ID:         uuid.New(),
		BiddingID:  biddingID,
		SupplierID: supplierID,
		InvitedBy:  invitedBy.ID,
		Notified:   true,
		NotifiedAt: &notifiedAt,
		Response:   ResponseUnanswered,
		CreatedAt:  now,
	}
}

// Respond records the supplier's single answer.
func (i *Invitation) Respond(accept bool, reason string, now time.Time) error {
	if i.Response != ResponseUnanswered {
		return shared.ErrAlreadyResponded
	}
	if accept {
		i.Response = ResponseAccepted
	} else {
		i.Response = ResponseRejected
	}
	respondedAt := now
	i.RespondedAt = &respondedAt
	i.Reason = reason
	return nil
}

// IsRejected returns true if the supplier declined the invitation
func (i *Invitation) IsRejected() bool {
	return i.Response == ResponseRejected
}
