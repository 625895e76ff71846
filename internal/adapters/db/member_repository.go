package db

import (
	"context"
	"database/sql"
	"fmt"

	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

// MemberRepository implements the member repository interface
type MemberRepository struct {
	conn *Connection
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(conn *Connection) *MemberRepository {
	return &MemberRepository{conn: conn}
}

// GetByID retrieves a member by ID
func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*shared.Member, error) {
	query := `
		SELECT id, name, kind, rank, department_id, is_admin, created_at
		FROM members
		WHERE id = $1
	`

	var member shared.Member
	err := r.conn.GetDB().QueryRowContext(ctx, query, id).Scan(
		&member.ID,
		&member.Name,
		&member.Kind,
		&member.Rank,
		&member.DepartmentID,
		&member.IsAdmin,
		&member.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &member, nil
}

// Create creates a new member
func (r *MemberRepository) Create(ctx context.Context, member *shared.Member) error {
	query := `
		INSERT INTO members (id, name, kind, rank, department_id, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		member.ID,
		member.Name,
		member.Kind,
		member.Rank,
		member.DepartmentID,
		member.IsAdmin,
		member.CreatedAt,
	)

	if err != nil {
		return mapUnique(err, constraintMemberKey, shared.Duplicate("member %s already exists", member.ID), "create member")
	}

	return nil
}

// ListByDepartment retrieves the internal members of a department at or above a rank
func (r *MemberRepository) ListByDepartment(ctx context.Context, departmentID uuid.UUID, minRank shared.Rank) ([]*shared.Member, error) {
	return r.list(ctx, `
		SELECT id, name, kind, rank, department_id, is_admin, created_at
		FROM members
		WHERE department_id = $1 AND rank >= $2 AND kind = $3
		ORDER BY rank DESC, name ASC
	`, departmentID, minRank, shared.ActorInternal)
}

// ListAdministrators retrieves every administrator
func (r *MemberRepository) ListAdministrators(ctx context.Context) ([]*shared.Member, error) {
	return r.list(ctx, `
		SELECT id, name, kind, rank, department_id, is_admin, created_at
		FROM members
		WHERE is_admin
		ORDER BY name ASC
	`)
}

func (r *MemberRepository) list(ctx context.Context, query string, args ...any) ([]*shared.Member, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*shared.Member
	for rows.Next() {
		var member shared.Member
		if err := rows.Scan(
			&member.ID,
			&member.Name,
			&member.Kind,
			&member.Rank,
			&member.DepartmentID,
			&member.IsAdmin,
			&member.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &member)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}
