package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

// InvitationRepository implements the invitation repository interface
type InvitationRepository struct {
	conn *Connection
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(conn *Connection) *InvitationRepository {
	return &InvitationRepository{conn: conn}
}

const invitationColumns = `id, bidding_id, supplier_id, invited_by, notified, notified_at,
		response, responded_at, reason, created_at`

func (r *InvitationRepository) Create(ctx context.Context, inv *bidding.Invitation) error {
	query := `
		INSERT INTO invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		inv.ID,
		inv.BiddingID,
		inv.SupplierID,
		inv.InvitedBy,
		inv.Notified,
		inv.NotifiedAt,
		inv.Response,
		inv.RespondedAt,
		inv.Reason,
		inv.CreatedAt,
	)
	if err != nil {
		return mapUnique(err, constraintInvitationSupplier, shared.ErrDuplicateInvitation, "create invitation")
	}

	return nil
}

// Get retrieves the invitation of a supplier to a bidding
func (r *InvitationRepository) Get(ctx context.Context, biddingID, supplierID uuid.UUID) (*bidding.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE bidding_id = $1 AND supplier_id = $2`

	inv, err := scanInvitation(r.conn.GetDB().QueryRowContext(ctx, query, biddingID, supplierID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

func (r *InvitationRepository) ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE bidding_id = $1 ORDER BY created_at ASC`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, biddingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*bidding.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitations: %w", err)
	}

	return invitations, nil
}

// Respond stores the answer only while the invitation is still unanswered
func (r *InvitationRepository) Respond(ctx context.Context, inv *bidding.Invitation) error {
	query := `
		UPDATE invitations
		SET response = $2, responded_at = $3, reason = $4
		WHERE id = $1 AND response = $5
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		inv.ID,
		inv.Response,
		inv.RespondedAt,
		inv.Reason,
		bidding.ResponseUnanswered,
	)
	if err != nil {
		return fmt.Errorf("failed to respond to invitation: %w", err)
	}

	return expectOne(result, shared.ErrAlreadyResponded)
}

func scanInvitation(row rowScanner) (*bidding.Invitation, error) {
	var inv bidding.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.BiddingID,
		&inv.SupplierID,
		&inv.InvitedBy,
		&inv.Notified,
		&inv.NotifiedAt,
		&inv.Response,
		&inv.RespondedAt,
		&inv.Reason,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ParticipationRepository implements the participation repository interface
type ParticipationRepository struct {
	conn *Connection
}

// NewParticipationRepository creates a new participation repository
func NewParticipationRepository(conn *Connection) *ParticipationRepository {
	return &ParticipationRepository{conn: conn}
}

const participationColumns = `id, bidding_id, supplier_id, unit_price, quantity, supply_price, tax, total,
		comment, submitted_at, confirmed, confirmed_at, evaluated, score, winner, winner_at,
		order_created, withdrawn, withdrawn_at, withdraw_reason`

func (r *ParticipationRepository) Create(ctx context.Context, p *bidding.Participation) error {
	query := `
		INSERT INTO participations (` + participationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		p.ID,
		p.BiddingID,
		p.SupplierID,
		p.UnitPrice,
		p.Quantity,
		p.Amounts.SupplyPrice,
		p.Amounts.Tax,
		p.Amounts.Total,
		p.Comment,
		p.SubmittedAt,
		p.Confirmed,
		p.ConfirmedAt,
		p.Evaluated,
		p.Score,
		p.Winner,
		p.WinnerAt,
		p.OrderCreated,
		p.Withdrawn,
		p.WithdrawnAt,
		p.WithdrawReason,
	)
	if err != nil {
		return mapUnique(err, constraintParticipationSupplier, shared.ErrDuplicateParticipation, "create participation")
	}

	return nil
}

func (r *ParticipationRepository) GetByID(ctx context.Context, id uuid.UUID) (*bidding.Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations WHERE id = $1`

	p, err := scanParticipation(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrParticipationNotFound
		}
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}

	return p, nil
}

func (r *ParticipationRepository) ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations WHERE bidding_id = $1 ORDER BY submitted_at ASC`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, biddingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}
	defer rows.Close()

	var participations []*bidding.Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		participations = append(participations, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participations: %w", err)
	}

	return participations, nil
}

// Update writes the mutable flags of a participation
func (r *ParticipationRepository) Update(ctx context.Context, p *bidding.Participation) error {
	query := `
		UPDATE participations
		SET confirmed = $2, confirmed_at = $3, withdrawn = $4, withdrawn_at = $5, withdraw_reason = $6
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		p.ID,
		p.Confirmed,
		p.ConfirmedAt,
		p.Withdrawn,
		p.WithdrawnAt,
		p.WithdrawReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update participation: %w", err)
	}

	return expectOne(result, shared.ErrParticipationNotFound)
}

// AssignWinner clears any previous winner of the bidding and flags the new
// participation and evaluation in one transaction. The partial unique index
// on winner rejects a concurrent second winner.
func (r *ParticipationRepository) AssignWinner(ctx context.Context, biddingID, participationID, evaluationID uuid.UUID, at time.Time) error {
	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE participations SET winner = FALSE, winner_at = NULL WHERE bidding_id = $1 AND winner`,
			biddingID,
		); err != nil {
			return fmt.Errorf("failed to clear previous winner: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE evaluations SET selected = FALSE, selected_at = NULL WHERE bidding_id = $1 AND selected`,
			biddingID,
		); err != nil {
			return fmt.Errorf("failed to clear previous selection: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE participations SET winner = TRUE, winner_at = $3 WHERE id = $1 AND bidding_id = $2`,
			participationID, biddingID, at,
		)
		if err != nil {
			return mapUnique(err, constraintParticipationWinner, shared.ErrConcurrentModification, "flag winner")
		}
		if err := expectOne(result, shared.ErrParticipationNotFound); err != nil {
			return err
		}

		result, err = tx.ExecContext(ctx,
			`UPDATE evaluations SET selected = TRUE, selected_at = $3 WHERE id = $1 AND participation_id = $2`,
			evaluationID, participationID, at,
		)
		if err != nil {
			return fmt.Errorf("failed to flag evaluation: %w", err)
		}
		return expectOne(result, shared.ErrEvaluationNotFound)
	})
}

func scanParticipation(row rowScanner) (*bidding.Participation, error) {
	var p bidding.Participation
	err := row.Scan(
		&p.ID,
		&p.BiddingID,
		&p.SupplierID,
		&p.UnitPrice,
		&p.Quantity,
		&p.Amounts.SupplyPrice,
		&p.Amounts.Tax,
		&p.Amounts.Total,
		&p.Comment,
		&p.SubmittedAt,
		&p.Confirmed,
		&p.ConfirmedAt,
		&p.Evaluated,
		&p.Score,
		&p.Winner,
		&p.WinnerAt,
		&p.OrderCreated,
		&p.Withdrawn,
		&p.WithdrawnAt,
		&p.WithdrawReason,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EvaluationRepository implements the evaluation repository interface
type EvaluationRepository struct {
	conn *Connection
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(conn *Connection) *EvaluationRepository {
	return &EvaluationRepository{conn: conn}
}

const evaluationColumns = `id, bidding_id, participation_id, evaluator_id, price_score, quality_score,
		delivery_score, reliability_score, total_score, comment, selected, selected_at, created_at`

// Create stores the evaluation and marks the participation as evaluated
func (r *EvaluationRepository) Create(ctx context.Context, e *bidding.Evaluation) error {
	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO evaluations (` + evaluationColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`

		_, err := tx.ExecContext(ctx, query,
			e.ID,
			e.BiddingID,
			e.ParticipationID,
			e.EvaluatorID,
			e.Scores.Price,
			e.Scores.Quality,
			e.Scores.Delivery,
			e.Scores.Reliability,
			e.TotalScore,
			e.Comment,
			e.Selected,
			e.SelectedAt,
			e.CreatedAt,
		)
		if err != nil {
			return mapUnique(err, constraintEvaluationEvaluator, shared.ErrDuplicateEvaluation, "create evaluation")
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE participations SET evaluated = TRUE, score = $2 WHERE id = $1`,
			e.ParticipationID, e.TotalScore,
		)
		if err != nil {
			return fmt.Errorf("failed to mark participation evaluated: %w", err)
		}
		return expectOne(result, shared.ErrParticipationNotFound)
	})
}

func (r *EvaluationRepository) GetByID(ctx context.Context, id uuid.UUID) (*bidding.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = $1`

	e, err := scanEvaluation(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}

	return e, nil
}

func (r *EvaluationRepository) ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE bidding_id = $1 ORDER BY created_at ASC`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, biddingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []*bidding.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evaluations = append(evaluations, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluations: %w", err)
	}

	return evaluations, nil
}

func scanEvaluation(row rowScanner) (*bidding.Evaluation, error) {
	var e bidding.Evaluation
	err := row.Scan(
		&e.ID,
		&e.BiddingID,
		&e.ParticipationID,
		&e.EvaluatorID,
		&e.Scores.Price,
		&e.Scores.Quality,
		&e.Scores.Delivery,
		&e.Scores.Reliability,
		&e.TotalScore,
		&e.Comment,
		&e.Selected,
		&e.SelectedAt,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
