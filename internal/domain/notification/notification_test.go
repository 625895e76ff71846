package notification

import (
	"testing"
	"time"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/contract"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
)

var now = time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)

func sampleBidding(status bidding.Status) *bidding.Bidding {
	return &bidding.Bidding{
		ID:           uuid.New(),
		BidNumber:    "BID-2025-0007",
		Title:        "Printer paper",
		Status:       status,
		CreatorID:    uuid.New(),
		DepartmentID: uuid.New(),
		Period:       shared.Period{Start: now, End: now.Add(24 * time.Hour)},
	}
}

func kinds(intents []Intent) []SelectorKind {
	out := make([]SelectorKind, 0, len(intents))
	for _, i := range intents {
		out = append(out, i.Recipient.Kind)
	}
	return out
}

func TestBiddingStatusChanged_RecipientsByTarget(t *testing.T) {
	cases := []struct {
		status bidding.Status
		want   []SelectorKind
	}{
		{bidding.StatusOngoing, []SelectorKind{SelectorInvitedSuppliers, SelectorMember}},
		{bidding.StatusClosed, []SelectorKind{SelectorParticipants, SelectorDepartment, SelectorMember}},
		{bidding.StatusCanceled, []SelectorKind{SelectorInvitedSuppliers, SelectorParticipants, SelectorMember}},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			b := sampleBidding(tc.status)
			intents := BiddingStatusChanged(b, bidding.StatusPending, "", now)

			check.Equal(t, tc.want, kinds(intents))
			for _, i := range intents {
				check.Equal(t, TypeBiddingStatusChanged, i.Type)
				check.Equal(t, b.ID, i.BiddingID)
				check.Equal(t, now, i.CreatedAt)
				check.NotEqual(t, uuid.Nil, i.ID)
			}
		})
	}
}

func TestWinnerSelected_TargetsWinnerAndDepartment(t *testing.T) {
	b := sampleBidding(bidding.StatusClosed)
	p := &bidding.Participation{ID: uuid.New(), SupplierID: uuid.New()}
	e := &bidding.Evaluation{ID: uuid.New(), ParticipationID: p.ID, TotalScore: 92}

	intents := WinnerSelected(b, p, e, now)

	check.Equal(t, 2, len(intents))
	check.Equal(t, Member(p.SupplierID), intents[0].Recipient)
	check.Equal(t, PriorityHigh, intents[0].Priority)
	check.Equal(t, SelectorDepartment, intents[1].Recipient.Kind)
	check.Equal(t, b.DepartmentID, intents[1].Recipient.DepartmentID)
}

func TestContractSigned(t *testing.T) {
	c := &contract.Contract{
		ID:                uuid.New(),
		TransactionNumber: "CNT-20250131-0001",
		SupplierID:        uuid.New(),
		CreatorID:         uuid.New(),
		Status:            contract.StatusInProgress,
		SupplierSignature: "s",
	}

	intents := ContractSigned(c, contract.RoleSupplier, now)
	check.Equal(t, 1, len(intents))
	check.Equal(t, Member(c.CreatorID), intents[0].Recipient)

	c.Status = contract.StatusClosed
	intents = ContractSigned(c, contract.RoleBuyer, now)
	check.Equal(t, []SelectorKind{SelectorMember, SelectorMember, SelectorAdministrators}, kinds(intents))
}

func TestSelectorString(t *testing.T) {
	id := uuid.MustParse("6f1c2f5e-8d7a-4b0e-9f5c-0a1b2c3d4e5f")

	check.Equal(t, "member:"+id.String(), Member(id).String())
	check.Equal(t, "bidding:"+id.String()+":invited", InvitedSuppliers(id).String())
	check.Equal(t, "bidding:"+id.String()+":participants", Participants(id).String())
	check.Equal(t, "department:"+id.String()+":rank:3", Department(id, shared.RankManager).String())
	check.Equal(t, "administrators", Administrators().String())
}
