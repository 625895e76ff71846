package db

import (
	"context"
	"database/sql"
	"fmt"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/contract"
	"bidding-service/internal/domain/order"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

// ContractRepository implements the contract repository interface
type ContractRepository struct {
	conn *Connection
}

// NewContractRepository creates a new contract repository
func NewContractRepository(conn *Connection) *ContractRepository {
	return &ContractRepository{conn: conn}
}

const contractColumns = `id, transaction_number, bidding_id, participation_id, supplier_id,
		start_date, end_date, delivery_date, quantity, unit_price, supply_price, tax, total,
		status, buyer_signature, buyer_signed_at, buyer_signer_id, supplier_signature,
		supplier_signed_at, creator_id, version, created_at, updated_at`

// Create inserts a contract together with its creation history record
func (r *ContractRepository) Create(ctx context.Context, c *contract.Contract, record bidding.HistoryRecord) error {
	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO contracts (` + contractColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		`

		_, err := tx.ExecContext(ctx, query,
			c.ID,
			c.TransactionNumber,
			c.BiddingID,
			c.ParticipationID,
			c.SupplierID,
			c.Period.Start,
			c.Period.End,
			c.DeliveryDate,
			c.Quantity,
			c.UnitPrice,
			c.Amounts.SupplyPrice,
			c.Amounts.Tax,
			c.Amounts.Total,
			c.Status,
			c.BuyerSignature,
			c.BuyerSignedAt,
			c.BuyerSignerID,
			c.SupplierSignature,
			c.SupplierSignedAt,
			c.CreatorID,
			1,
			c.CreatedAt,
			c.UpdatedAt,
		)
		if err != nil {
			return mapUnique(err, constraintContractParticipation, shared.ErrDuplicateContract, "create contract")
		}

		if err := insertHistory(ctx, tx, "contract_history", record); err != nil {
			return err
		}
		c.Version = 1
		return nil
	})
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`

	c, err := scanContract(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	return c, nil
}

func (r *ContractRepository) ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*contract.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE bidding_id = $1 ORDER BY created_at ASC`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, biddingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contracts: %w", err)
	}

	return contracts, nil
}

// Update writes the contract if its version is unchanged and appends the
// history records in the same transaction
func (r *ContractRepository) Update(ctx context.Context, c *contract.Contract, records ...bidding.HistoryRecord) error {
	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE contracts
			SET status = $3, buyer_signature = $4, buyer_signed_at = $5, buyer_signer_id = $6,
			    supplier_signature = $7, supplier_signed_at = $8, updated_at = $9, version = version + 1
			WHERE id = $1 AND version = $2
		`

		result, err := tx.ExecContext(ctx, query,
			c.ID,
			c.Version,
			c.Status,
			c.BuyerSignature,
			c.BuyerSignedAt,
			c.BuyerSignerID,
			c.SupplierSignature,
			c.SupplierSignedAt,
			c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update contract: %w", err)
		}
		if err := expectOne(result, shared.ErrConcurrentModification); err != nil {
			return err
		}

		for _, record := range records {
			if err := insertHistory(ctx, tx, "contract_history", record); err != nil {
				return err
			}
		}

		c.Version++
		return nil
	})
}

func (r *ContractRepository) History(ctx context.Context, contractID uuid.UUID) ([]bidding.HistoryRecord, error) {
	if _, err := r.GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	return listHistory(ctx, r.conn.GetDB(), "contract_history", contractID)
}

func scanContract(row rowScanner) (*contract.Contract, error) {
	var c contract.Contract
	err := row.Scan(
		&c.ID,
		&c.TransactionNumber,
		&c.BiddingID,
		&c.ParticipationID,
		&c.SupplierID,
		&c.Period.Start,
		&c.Period.End,
		&c.DeliveryDate,
		&c.Quantity,
		&c.UnitPrice,
		&c.Amounts.SupplyPrice,
		&c.Amounts.Tax,
		&c.Amounts.Total,
		&c.Status,
		&c.BuyerSignature,
		&c.BuyerSignedAt,
		&c.BuyerSignerID,
		&c.SupplierSignature,
		&c.SupplierSignedAt,
		&c.CreatorID,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// OrderRepository implements the order repository interface
type OrderRepository struct {
	conn *Connection
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(conn *Connection) *OrderRepository {
	return &OrderRepository{conn: conn}
}

const orderColumns = `id, order_number, bidding_id, contract_id, participation_id, supplier_id,
		quantity, unit_price, supply_price, tax, total, expected_delivery_date, status,
		requested_by, approver_id, approved_at, approval_comment, created_at, updated_at`

// Create stores the order and flags the participation as ordered
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO orders (` + orderColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		`

		_, err := tx.ExecContext(ctx, query,
			o.ID,
			o.OrderNumber,
			o.BiddingID,
			o.ContractID,
			o.ParticipationID,
			o.SupplierID,
			o.Quantity,
			o.UnitPrice,
			o.Amounts.SupplyPrice,
			o.Amounts.Tax,
			o.Amounts.Total,
			o.ExpectedDeliveryDate,
			o.Status,
			o.RequestedBy,
			o.ApproverID,
			o.ApprovedAt,
			o.ApprovalComment,
			o.CreatedAt,
			o.UpdatedAt,
		)
		if err != nil {
			return mapUnique(err, constraintOrderContract, shared.ErrDuplicateOrder, "create order")
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE participations SET order_created = TRUE WHERE id = $1`,
			o.ParticipationID,
		)
		if err != nil {
			return fmt.Errorf("failed to flag participation ordered: %w", err)
		}
		return expectOne(result, shared.ErrParticipationNotFound)
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByContract retrieves the order drawn from a contract
func (r *OrderRepository) GetByContract(ctx context.Context, contractID uuid.UUID) (*order.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE contract_id = $1`, contractID)
}

func (r *OrderRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := r.conn.GetDB().QueryRowContext(ctx, query, id).Scan(
		&o.ID,
		&o.OrderNumber,
		&o.BiddingID,
		&o.ContractID,
		&o.ParticipationID,
		&o.SupplierID,
		&o.Quantity,
		&o.UnitPrice,
		&o.Amounts.SupplyPrice,
		&o.Amounts.Tax,
		&o.Amounts.Total,
		&o.ExpectedDeliveryDate,
		&o.Status,
		&o.RequestedBy,
		&o.ApproverID,
		&o.ApprovedAt,
		&o.ApprovalComment,
		&o.CreatedAt,
		&o.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &o, nil
}

// Update stores an approval decision
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	query := `
		UPDATE orders
		SET status = $2, approver_id = $3, approved_at = $4, approval_comment = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		o.ID,
		o.Status,
		o.ApproverID,
		o.ApprovedAt,
		o.ApprovalComment,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	return expectOne(result, shared.ErrOrderNotFound)
}
