package db

import (
	"bidding-service/internal/ports/outbound"
)

// RepositoryFactory creates and manages all database repositories
type RepositoryFactory struct {
	conn *Connection
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(conn *Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// GetAllRepositories returns all repositories for dependency injection
func (f *RepositoryFactory) GetAllRepositories() outbound.Repositories {
	return outbound.Repositories{
		Biddings:       NewBiddingRepository(f.conn),
		Invitations:    NewInvitationRepository(f.conn),
		Participations: NewParticipationRepository(f.conn),
		Evaluations:    NewEvaluationRepository(f.conn),
		Contracts:      NewContractRepository(f.conn),
		Orders:         NewOrderRepository(f.conn),
		Members:        NewMemberRepository(f.conn),
		Sequencer:      NewSequenceRepository(f.conn),
	}
}
