package notification

import (
	"fmt"
	"time"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/contract"
	"bidding-service/internal/domain/order"
	"bidding-service/internal/domain/shared"
)

func BiddingCreated(b *bidding.Bidding, now time.Time) []Intent {
	return []Intent{
		newIntent(TypeBiddingCreated, PriorityLow, Department(b.DepartmentID, shared.RankManager), b.ID, b.ID, now,
			fmt.Sprintf("Bidding %s created", b.BidNumber),
			fmt.Sprintf("%q is waiting to be started.", b.Title)),
	}
}

func BiddingUpdated(b *bidding.Bidding, now time.Time) []Intent {
	title := fmt.Sprintf("Bidding %s updated", b.BidNumber)
	body := fmt.Sprintf("The terms of %q changed. Total is now %s.", b.Title, b.Amounts.Total)

	intents := []Intent{
		newIntent(TypeBiddingUpdated, PriorityNormal, InvitedSuppliers(b.ID), b.ID, b.ID, now, title, body),
	}
	if b.Status == bidding.StatusOngoing {
		intents = append(intents,
			newIntent(TypeBiddingUpdated, PriorityHigh, Participants(b.ID), b.ID, b.ID, now, title, body))
	}
	return intents
}

// BiddingStatusChanged addresses suppliers forward and the creator backward.
// Recipients depend on the target status.
func BiddingStatusChanged(b *bidding.Bidding, from bidding.Status, reason string, now time.Time) []Intent {
	title := fmt.Sprintf("Bidding %s is now %s", b.BidNumber, b.Status)
	body := fmt.Sprintf("%q moved from %s to %s.", b.Title, from, b.Status)
	if reason != "" {
		body += " Reason: " + reason
	}

	creator := newIntent(TypeBiddingStatusChanged, PriorityLow, Member(b.CreatorID), b.ID, b.ID, now, title, body)

	switch b.Status {
	case bidding.StatusOngoing:
		return []Intent{
			newIntent(TypeBiddingStatusChanged, PriorityHigh, InvitedSuppliers(b.ID), b.ID, b.ID, now,
				fmt.Sprintf("Bidding %s is open", b.BidNumber),
				fmt.Sprintf("%q accepts participations until %s.", b.Title, b.Period.End.Format(time.RFC3339))),
			creator,
		}
	case bidding.StatusClosed:
		return []Intent{
			newIntent(TypeBiddingStatusChanged, PriorityNormal, Participants(b.ID), b.ID, b.ID, now, title, body),
			newIntent(TypeBiddingStatusChanged, PriorityNormal, Department(b.DepartmentID, shared.RankSeniorManager), b.ID, b.ID, now,
				fmt.Sprintf("Bidding %s ready for evaluation", b.BidNumber), body),
			creator,
		}
	case bidding.StatusCanceled:
		return []Intent{
			newIntent(TypeBiddingStatusChanged, PriorityHigh, InvitedSuppliers(b.ID), b.ID, b.ID, now, title, body),
			newIntent(TypeBiddingStatusChanged, PriorityHigh, Participants(b.ID), b.ID, b.ID, now, title, body),
			creator,
		}
	default:
		return []Intent{creator}
	}
}

func SupplierInvited(b *bidding.Bidding, inv *bidding.Invitation, now time.Time) []Intent {
	return []Intent{
		newIntent(TypeSupplierInvited, PriorityHigh, Member(inv.SupplierID), b.ID, inv.ID, now,
			fmt.Sprintf("Invitation to bidding %s", b.BidNumber),
			fmt.Sprintf("You are invited to bid on %q between %s and %s.", b.Title,
				b.Period.Start.Format(time.RFC3339), b.Period.End.Format(time.RFC3339))),
	}
}

func InvitationAnswered(b *bidding.Bidding, inv *bidding.Invitation, now time.Time) []Intent {
	body := fmt.Sprintf("Supplier %s answered %s.", inv.SupplierID, inv.Response)
	if inv.Reason != "" {
		body += " Reason: " + inv.Reason
	}
	return []Intent{
		newIntent(TypeInvitationAnswered, PriorityNormal, Member(b.CreatorID), b.ID, inv.ID, now,
			fmt.Sprintf("Invitation to %s answered", b.BidNumber), body),
	}
}

func ParticipationSubmitted(b *bidding.Bidding, p *bidding.Participation, now time.Time) []Intent {
	return []Intent{
		newIntent(TypeParticipationSubmitted, PriorityNormal, Member(b.CreatorID), b.ID, p.ID, now,
			fmt.Sprintf("New participation in %s", b.BidNumber),
			fmt.Sprintf("Supplier %s offered %d units at %s (total %s).", p.SupplierID, p.Quantity, p.UnitPrice, p.Amounts.Total)),
	}
}

func ParticipationConfirmed(b *bidding.Bidding, p *bidding.Participation, now time.Time) []Intent {
	return []Intent{
		newIntent(TypeParticipationConfirmed, PriorityNormal, Member(p.SupplierID), b.ID, p.ID, now,
			fmt.Sprintf("Participation in %s confirmed", b.BidNumber),
			"The buyer acknowledged your participation."),
	}
}

func ParticipationWithdrawn(b *bidding.Bidding, p *bidding.Participation, now time.Time) []Intent {
	return []Intent{
		newIntent(TypeParticipationWithdrawn, PriorityNormal, Member(b.CreatorID), b.ID, p.ID, now,
			fmt.Sprintf("Participation withdrawn from %s", b.BidNumber),
			fmt.Sprintf("Supplier %s withdrew. Reason: %s", p.SupplierID, p.WithdrawReason)),
	}
}

func EvaluationRecorded(b *bidding.Bidding, e *bidding.Evaluation, now time.Time) []Intent {
	return []Intent{
		newIntent(TypeEvaluationRecorded, PriorityLow, Member(b.CreatorID), b.ID, e.ID, now,
			fmt.Sprintf("Evaluation recorded for %s", b.BidNumber),
			fmt.Sprintf("Participation %s scored %d.", e.ParticipationID, e.TotalScore)),
	}
}

func WinnerSelected(b *bidding.Bidding, p *bidding.Participation, e *bidding.Evaluation, now time.Time) []Intent {
	return []Intent{
		newIntent(TypeWinnerSelected, PriorityHigh, Member(p.SupplierID), b.ID, p.ID, now,
			fmt.Sprintf("You won bidding %s", b.BidNumber),
			fmt.Sprintf("Your participation in %q was selected with a score of %d.", b.Title, e.TotalScore)),
		newIntent(TypeWinnerSelected, PriorityNormal, Department(b.DepartmentID, shared.RankStaff), b.ID, p.ID, now,
			fmt.Sprintf("Winner selected for %s", b.BidNumber),
			fmt.Sprintf("Supplier %s won with a score of %d.", p.SupplierID, e.TotalScore)),
	}
}

func ContractDrafted(c *contract.Contract, now time.Time) []Intent {
	return []Intent{
		newIntent(TypeContractDrafted, PriorityNormal, Member(c.SupplierID), c.BiddingID, c.ID, now,
			fmt.Sprintf("Contract %s drafted", c.TransactionNumber),
			fmt.Sprintf("A contract for %d units totalling %s awaits review.", c.Quantity, c.Amounts.Total)),
	}
}

func ContractStatusChanged(c *contract.Contract, from contract.Status, reason string, now time.Time) []Intent {
	title := fmt.Sprintf("Contract %s is now %s", c.TransactionNumber, c.Status)
	body := fmt.Sprintf("Contract moved from %s to %s.", from, c.Status)
	if reason != "" {
		body += " Reason: " + reason
	}
	priority := PriorityNormal
	if c.Status == contract.StatusCanceled {
		priority = PriorityHigh
	}
	return []Intent{
		newIntent(TypeContractStatusChanged, priority, Member(c.SupplierID), c.BiddingID, c.ID, now, title, body),
		newIntent(TypeContractStatusChanged, PriorityLow, Member(c.CreatorID), c.BiddingID, c.ID, now, title, body),
	}
}

// ContractSigned tells the counterpart that a signature arrived. Once the
// contract is fully signed both sides and the administrators are told.
func ContractSigned(c *contract.Contract, role contract.Role, now time.Time) []Intent {
	if c.Status == contract.StatusClosed {
		title := fmt.Sprintf("Contract %s fully signed", c.TransactionNumber)
		body := "Both parties signed. A purchase order can now be issued."
		return []Intent{
			newIntent(TypeContractSigned, PriorityHigh, Member(c.SupplierID), c.BiddingID, c.ID, now, title, body),
			newIntent(TypeContractSigned, PriorityHigh, Member(c.CreatorID), c.BiddingID, c.ID, now, title, body),
			newIntent(TypeContractSigned, PriorityLow, Administrators(), c.BiddingID, c.ID, now, title, body),
		}
	}

	counterpart := Member(c.SupplierID)
	if role == contract.RoleSupplier {
		counterpart = Member(c.CreatorID)
	}
	return []Intent{
		newIntent(TypeContractSigned, PriorityNormal, counterpart, c.BiddingID, c.ID, now,
			fmt.Sprintf("Contract %s signed by %s", c.TransactionNumber, role),
			"Your signature is still required."),
	}
}

func OrderIssued(o *order.Order, b *bidding.Bidding, now time.Time) []Intent {
	return []Intent{
		newIntent(TypeOrderIssued, PriorityHigh, Member(o.SupplierID), o.BiddingID, o.ID, now,
			fmt.Sprintf("Purchase order %s issued", o.OrderNumber),
			fmt.Sprintf("Deliver %d units by %s.", o.Quantity, o.ExpectedDeliveryDate.Format("2006-01-02"))),
		newIntent(TypeOrderIssued, PriorityNormal, Department(b.DepartmentID, shared.RankDirector), o.BiddingID, o.ID, now,
			fmt.Sprintf("Purchase order %s awaits approval", o.OrderNumber),
			fmt.Sprintf("Total %s.", o.Amounts.Total)),
	}
}

func OrderDecided(o *order.Order, now time.Time) []Intent {
	title := fmt.Sprintf("Purchase order %s %s", o.OrderNumber, o.Status)
	body := o.ApprovalComment
	return []Intent{
		newIntent(TypeOrderDecided, PriorityNormal, Member(o.RequestedBy), o.BiddingID, o.ID, now, title, body),
		newIntent(TypeOrderDecided, PriorityNormal, Member(o.SupplierID), o.BiddingID, o.ID, now, title, body),
	}
}
