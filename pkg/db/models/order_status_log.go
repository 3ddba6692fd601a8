package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/thouesa/thouesa-backend/pkg/enums"
)

// OrderStatusLog is one immutable entry of an order's status history.
// FromStatus is nil for the creation entry.
type OrderStatusLog struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	FromStatus *enums.OrderStatus `gorm:"column:from_status;type:order_status"`
	ToStatus   enums.OrderStatus  `gorm:"column:to_status;type:order_status;not null"`
	ActorID    uuid.UUID          `gorm:"column:actor_id;type:uuid;not null"`
	Note       string             `gorm:"column:note;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}
