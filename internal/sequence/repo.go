package sequence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

const nextValueSQL = `INSERT INTO order_sequences (seq_date, direction, last_value, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (seq_date, direction)
DO UPDATE SET last_value = order_sequences.last_value + 1, updated_at = excluded.updated_at
RETURNING last_value`

// Repository persists the per-day, per-direction counters.
type Repository interface {
	NextValue(ctx context.Context, seqDate, direction string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sequence repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// NextValue creates the counter at 1 or increments it in a single statement.
func (r *repository) NextValue(ctx context.Context, seqDate, direction string) (int64, error) {
	var value int64
	res := r.db.WithContext(ctx).Raw(nextValueSQL, seqDate, direction, time.Now().UTC()).Scan(&value)
	if res.Error != nil {
		return 0, res.Error
	}
	if value <= 0 {
		return 0, errors.New("sequence upsert returned no value")
	}
	return value, nil
}
