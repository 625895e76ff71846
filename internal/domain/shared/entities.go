package shared

import (
	"time"

	"github.com/google/uuid"
)

// Rank is an organizational level used to gate actions.
type Rank int

const (
	RankNone             Rank = 0
	RankStaff            Rank = 1
	RankAssistantManager Rank = 2
	RankManager          Rank = 3
	RankSeniorManager    Rank = 4
	RankDirector         Rank = 5
)

func (r Rank) String() string {
	switch r {
	case RankStaff:
		return "staff"
	case RankAssistantManager:
		return "assistant-manager"
	case RankManager:
		return "manager"
	case RankSeniorManager:
		return "senior-manager"
	case RankDirector:
		return "director"
	default:
		return "none"
	}
}

// ActorKind separates buyer staff from suppliers and automated jobs.
type ActorKind string

const (
	ActorInternal ActorKind = "INTERNAL"
	ActorSupplier ActorKind = "SUPPLIER"
	ActorSystem   ActorKind = "SYSTEM"
)

// Member represents a registered user, either buyer staff or a supplier account
type Member struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Kind         ActorKind `json:"kind"`
	Rank         Rank      `json:"rank"`
	DepartmentID uuid.UUID `json:"department_id"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is whoever performs an operation.
type Actor struct {
	ID           uuid.UUID `json:"id"`
	Kind         ActorKind `json:"kind"`
	Rank         Rank      `json:"rank"`
	DepartmentID uuid.UUID `json:"department_id"`
}

// ActorFromMember converts a stored member into an acting identity.
func ActorFromMember(m *Member) Actor {
	return Actor{
		ID:           m.ID,
		Kind:         m.Kind,
		Rank:         m.Rank,
		DepartmentID: m.DepartmentID,
	}
}

// SystemActor is used by background jobs such as the closing scheduler.
func SystemActor() Actor {
	return Actor{ID: uuid.Nil, Kind: ActorSystem, Rank: RankDirector}
}

func (a Actor) IsSupplier() bool {
	return a.Kind == ActorSupplier
}

func (a Actor) IsSystem() bool {
	return a.Kind == ActorSystem
}
