package notification

import (
	"fmt"
	"time"

	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

// Type identifies what happened.
type Type string

const (
	TypeBiddingCreated         Type = "bidding_created"
	TypeBiddingUpdated         Type = "bidding_updated"
	TypeBiddingStatusChanged   Type = "bidding_status_changed"
	TypeSupplierInvited        Type = "supplier_invited"
	TypeInvitationAnswered     Type = "invitation_answered"
	TypeParticipationSubmitted Type = "participation_submitted"
	TypeParticipationConfirmed Type = "participation_confirmed"
	TypeParticipationWithdrawn Type = "participation_withdrawn"
	TypeEvaluationRecorded     Type = "evaluation_recorded"
	TypeWinnerSelected         Type = "winner_selected"
	TypeContractDrafted        Type = "contract_drafted"
	TypeContractStatusChanged  Type = "contract_status_changed"
	TypeContractSigned         Type = "contract_signed"
	TypeOrderIssued            Type = "order_issued"
	TypeOrderDecided           Type = "order_decided"
)

// Priority hints how urgently a dispatcher should deliver.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// SelectorKind names a recipient set.
type SelectorKind string

const (
	SelectorMember           SelectorKind = "MEMBER"
	SelectorInvitedSuppliers SelectorKind = "INVITED_SUPPLIERS"
	SelectorParticipants     SelectorKind = "PARTICIPANTS"
	SelectorDepartment       SelectorKind = "DEPARTMENT"
	SelectorAdministrators   SelectorKind = "ADMINISTRATORS"
)

// Selector describes who should receive an intent without resolving it to
// concrete addresses.
type Selector struct {
	Kind         SelectorKind `json:"kind"`
	MemberID     uuid.UUID    `json:"member_id,omitempty"`
	BiddingID    uuid.UUID    `json:"bidding_id,omitempty"`
	DepartmentID uuid.UUID    `json:"department_id,omitempty"`
	MinRank      shared.Rank  `json:"min_rank,omitempty"`
}

func Member(id uuid.UUID) Selector {
	return Selector{Kind: SelectorMember, MemberID: id}
}

func InvitedSuppliers(biddingID uuid.UUID) Selector {
	return Selector{Kind: SelectorInvitedSuppliers, BiddingID: biddingID}
}

func Participants(biddingID uuid.UUID) Selector {
	return Selector{Kind: SelectorParticipants, BiddingID: biddingID}
}

func Department(departmentID uuid.UUID, minRank shared.Rank) Selector {
	return Selector{Kind: SelectorDepartment, DepartmentID: departmentID, MinRank: minRank}
}

func Administrators() Selector {
	return Selector{Kind: SelectorAdministrators}
}

func (s Selector) String() string {
	switch s.Kind {
	case SelectorMember:
		return fmt.Sprintf("member:%s", s.MemberID)
	case SelectorInvitedSuppliers:
		return fmt.Sprintf("bidding:%s:invited", s.BiddingID)
	case SelectorParticipants:
		return fmt.Sprintf("bidding:%s:participants", s.BiddingID)
	case SelectorDepartment:
		return fmt.Sprintf("department:%s:rank:%d", s.DepartmentID, s.MinRank)
	default:
		return "administrators"
	}
}

// Intent is a request to notify a recipient set. Delivery is not the
// domain's concern.
type Intent struct {
	ID        uuid.UUID `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Recipient Selector  `json:"recipient"`
	Priority  Priority  `json:"priority"`
	BiddingID uuid.UUID `json:"bidding_id"`
	EntityID  uuid.UUID `json:"entity_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newIntent(t Type, priority Priority, recipient Selector, biddingID, entityID uuid.UUID, now time.Time, title, body string) Intent {
	return Intent{
		ID:        uuid.New(),
		Type:      t,
		Title:     title,
		Body:      body,
		Recipient: recipient,
		Priority:  priority,
		BiddingID: biddingID,
		EntityID:  entityID,
		CreatedAt: now,
	}
}
