package db

import (
	"context"
	"fmt"
)

// SequenceRepository hands out document numbers from the sequences table
type SequenceRepository struct {
	conn *Connection
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(conn *Connection) *SequenceRepository {
	return &SequenceRepository{conn: conn}
}

// Next atomically increments the counter of (prefix, dateKey), starting at 1
func (r *SequenceRepository) Next(ctx context.Context, prefix, dateKey string) (int64, error) {
	query := `
		INSERT INTO sequences (prefix, date_key, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, date_key) DO UPDATE SET value = sequences.value + 1
		RETURNING value
	`

	var value int64
	if err := r.conn.GetDB().QueryRowContext(ctx, query, prefix, dateKey).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s-%s: %w", prefix, dateKey, err)
	}

	return value, nil
}
