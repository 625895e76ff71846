package shared

import (
	"errors"
	"fmt"
)

// Kind classifies domain errors so callers can tell "not allowed" from
// "not possible right now".
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindPermission        Kind = "permission"
	KindDuplicate         Kind = "duplicate"
	KindValidation        Kind = "validation"
	KindState             Kind = "state"
	KindConflict          Kind = "conflict"
	KindInternal          Kind = "internal"
)

// Error is the single error type produced by the domain and the services.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on kind and code so that a freshly built error with the same
// code satisfies errors.Is against the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// NotFound builds a not-found error for the given entity.
func NotFound(entity string, id fmt.Stringer) *Error {
	return newError(KindNotFound, entity+"_not_found", fmt.Sprintf("%s %s not found", entity, id))
}

// InvalidTransition builds a status graph violation error.
func InvalidTransition(entity, from, to string) *Error {
	return newError(KindInvalidTransition, "invalid_transition",
		fmt.Sprintf("%s cannot move from %s to %s", entity, from, to))
}

// Permission builds an authorization denial.
func Permission(format string, args ...any) *Error {
	return newError(KindPermission, "permission_denied", fmt.Sprintf(format, args...))
}

// Duplicate builds a uniqueness violation.
func Duplicate(format string, args ...any) *Error {
	return newError(KindDuplicate, "duplicate", fmt.Sprintf(format, args...))
}

// Validation builds a malformed-input error.
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, "validation", fmt.Sprintf(format, args...))
}

// State builds an error for an operation attempted in the wrong lifecycle state.
func State(format string, args ...any) *Error {
	return newError(KindState, "state", fmt.Sprintf(format, args...))
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

var (
	// Lookup errors
	ErrBiddingNotFound       = newError(KindNotFound, "bidding_not_found", "bidding not found")
	ErrInvitationNotFound    = newError(KindNotFound, "invitation_not_found", "invitation not found")
	ErrParticipationNotFound = newError(KindNotFound, "participation_not_found", "participation not found")
	ErrEvaluationNotFound    = newError(KindNotFound, "evaluation_not_found", "evaluation not found")
	ErrContractNotFound      = newError(KindNotFound, "contract_not_found", "contract not found")
	ErrOrderNotFound         = newError(KindNotFound, "order_not_found", "order not found")
	ErrMemberNotFound        = newError(KindNotFound, "member_not_found", "member not found")

	// Uniqueness errors
	ErrDuplicateInvitation    = newError(KindDuplicate, "duplicate_invitation", "supplier already invited to this bidding")
	ErrAlreadyResponded       = newError(KindDuplicate, "already_responded", "invitation already answered")
	ErrDuplicateParticipation = newError(KindDuplicate, "duplicate_participation", "supplier already participates in this bidding")
	ErrDuplicateEvaluation    = newError(KindDuplicate, "duplicate_evaluation", "evaluator already scored this participation")
	ErrDuplicateContract      = newError(KindDuplicate, "duplicate_contract", "contract already drafted for this participation")
	ErrDuplicateOrder         = newError(KindDuplicate, "duplicate_order", "order already issued for this contract")

	// Lifecycle errors
	ErrNoEvaluations          = newError(KindState, "no_evaluations", "bidding has no evaluations")
	ErrBiddingNotOpen         = newError(KindState, "bidding_not_open", "bidding is not accepting participations")
	ErrOutsideBiddingPeriod   = newError(KindState, "outside_bidding_period", "current time is outside the bidding period")
	ErrInvitationRejected     = newError(KindState, "invitation_rejected", "supplier rejected the invitation to this bidding")
	ErrParticipationWithdrawn = newError(KindState, "participation_withdrawn", "participation was withdrawn")
	ErrNotWinner              = newError(KindState, "not_winner", "participation is not the selected winner")
	ErrContractNotInProgress  = newError(KindState, "contract_not_in_progress", "signatures are only accepted while the contract is in progress")
	ErrAlreadySigned          = newError(KindState, "already_signed", "signature already recorded for this role")
	ErrContractNotSigned      = newError(KindState, "contract_not_signed", "contract is not fully signed")

	// Concurrency errors
	ErrConcurrentModification = newError(KindConflict, "concurrent_modification", "entity was modified concurrently, re-fetch and retry")
	ErrLockNotAcquired        = newError(KindConflict, "lock_not_acquired", "entity is being modified by another request")
)
