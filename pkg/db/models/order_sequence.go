package models

import "time"

// OrderSequence is the durable counter behind order numbers.
type OrderSequence struct {
	SeqDate   string    `gorm:"column:seq_date;primaryKey"`
	Direction string    `gorm:"column:direction;primaryKey"`
	LastValue int64     `gorm:"column:last_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
