package db

import (
	"context"
	"database/sql"
	"fmt"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const biddingColumns = `id, bid_number, title, description, method, quantity, unit_price,
		supply_price, tax, total, start_date, end_date, status, creator_id, department_id,
		version, created_at, updated_at`

// BiddingRepository implements the bidding repository interface
type BiddingRepository struct {
	conn *Connection
}

// NewBiddingRepository creates a new bidding repository
func NewBiddingRepository(conn *Connection) *BiddingRepository {
	return &BiddingRepository{conn: conn}
}

// Create inserts a bidding together with its creation history record
func (r *BiddingRepository) Create(ctx context.Context, b *bidding.Bidding, record bidding.HistoryRecord) error {
	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO biddings (` + biddingColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`

		_, err := tx.ExecContext(ctx, query,
			b.ID,
			b.BidNumber,
			b.Title,
			b.Description,
			b.Method,
			b.Quantity,
			b.UnitPrice,
			b.Amounts.SupplyPrice,
			b.Amounts.Tax,
			b.Amounts.Total,
			b.Period.Start,
			b.Period.End,
			b.Status,
			b.CreatorID,
			b.DepartmentID,
			1,
			b.CreatedAt,
			b.UpdatedAt,
		)
		if err != nil {
			return mapUnique(err, constraintBiddingNumber, shared.Duplicate("bid number %s already used", b.BidNumber), "create bidding")
		}

		if err := insertHistory(ctx, tx, "bidding_history", record); err != nil {
			return err
		}
		b.Version = 1
		return nil
	})
}

// GetByID retrieves a bidding by ID
func (r *BiddingRepository) GetByID(ctx context.Context, id uuid.UUID) (*bidding.Bidding, error) {
	query := `SELECT ` + biddingColumns + ` FROM biddings WHERE id = $1`

	b, err := scanBidding(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrBiddingNotFound
		}
		return nil, fmt.Errorf("failed to get bidding: %w", err)
	}

	return b, nil
}

// List retrieves a page of biddings, newest first, optionally filtered by status
func (r *BiddingRepository) List(ctx context.Context, statuses []bidding.Status, page, pageSize int) ([]*bidding.Bidding, error) {
	baseQuery := `SELECT ` + biddingColumns + ` FROM biddings `

	var whereClause string
	var args []interface{}
	argCount := 1

	if len(statuses) > 0 {
		filter := make([]string, len(statuses))
		for i, s := range statuses {
			filter[i] = string(s)
		}
		whereClause = "WHERE status = ANY($1)"
		args = append(args, pq.Array(filter))
		argCount++
	}

	// Add pagination
	limitClause := fmt.Sprintf("LIMIT $%d", argCount)
	offsetClause := fmt.Sprintf("OFFSET $%d", argCount+1)
	args = append(args, pageSize, (page-1)*pageSize)

	query := baseQuery + whereClause + " ORDER BY created_at DESC " + limitClause + " " + offsetClause

	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list biddings: %w", err)
	}
	defer rows.Close()

	var biddings []*bidding.Bidding
	for rows.Next() {
		b, err := scanBidding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bidding: %w", err)
		}
		biddings = append(biddings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating biddings: %w", err)
	}

	return biddings, nil
}

// Update writes the bidding if its version is unchanged and appends the
// history records in the same transaction
func (r *BiddingRepository) Update(ctx context.Context, b *bidding.Bidding, records ...bidding.HistoryRecord) error {
	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE biddings
			SET title = $3, description = $4, quantity = $5, unit_price = $6,
			    supply_price = $7, tax = $8, total = $9, start_date = $10, end_date = $11,
			    status = $12, updated_at = $13, version = version + 1
			WHERE id = $1 AND version = $2
		`

		result, err := tx.ExecContext(ctx, query,
			b.ID,
			b.Version,
			b.Title,
			b.Description,
			b.Quantity,
			b.UnitPrice,
			b.Amounts.SupplyPrice,
			b.Amounts.Tax,
			b.Amounts.Total,
			b.Period.Start,
			b.Period.End,
			b.Status,
			b.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update bidding: %w", err)
		}

		// Either the row is gone or another writer bumped the version
		if err := expectOne(result, shared.ErrConcurrentModification); err != nil {
			return err
		}

		for _, record := range records {
			if err := insertHistory(ctx, tx, "bidding_history", record); err != nil {
				return err
			}
		}

		b.Version++
		return nil
	})
}

// History retrieves the status log of a bidding, oldest first
func (r *BiddingRepository) History(ctx context.Context, biddingID uuid.UUID) ([]bidding.HistoryRecord, error) {
	if _, err := r.GetByID(ctx, biddingID); err != nil {
		return nil, err
	}
	return listHistory(ctx, r.conn.GetDB(), "bidding_history", biddingID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBidding(row rowScanner) (*bidding.Bidding, error) {
	var b bidding.Bidding
	err := row.Scan(
		&b.ID,
		&b.BidNumber,
		&b.Title,
		&b.Description,
		&b.Method,
		&b.Quantity,
		&b.UnitPrice,
		&b.Amounts.SupplyPrice,
		&b.Amounts.Tax,
		&b.Amounts.Total,
		&b.Period.Start,
		&b.Period.End,
		&b.Status,
		&b.CreatorID,
		&b.DepartmentID,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// insertHistory and listHistory serve both bidding_history and contract_history
func insertHistory(ctx context.Context, db execer, table string, record bidding.HistoryRecord) error {
	query := `
		INSERT INTO ` + table + ` (id, entity_id, from_status, to_status, actor_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := db.ExecContext(ctx, query,
		record.ID,
		record.EntityID,
		record.From,
		record.To,
		record.ActorID,
		record.Reason,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s record: %w", table, err)
	}
	return nil
}

func listHistory(ctx context.Context, db execer, table string, entityID uuid.UUID) ([]bidding.HistoryRecord, error) {
	query := `
		SELECT id, entity_id, from_status, to_status, actor_id, reason, created_at
		FROM ` + table + `
		WHERE entity_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var records []bidding.HistoryRecord
	for rows.Next() {
		var record bidding.HistoryRecord
		if err := rows.Scan(
			&record.ID,
			&record.EntityID,
			&record.From,
			&record.To,
			&record.ActorID,
			&record.Reason,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", table, err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table, err)
	}

	return records, nil
}
