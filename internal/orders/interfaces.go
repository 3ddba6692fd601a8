package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	"github.com/thouesa/thouesa-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their status logs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateLog(ctx context.Context, entry *models.OrderStatusLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error)
	ListLogs(ctx context.Context, orderID uuid.UUID, newestFirst bool) ([]models.OrderStatusLog, error)
	ListInStatusBefore(ctx context.Context, status enums.OrderStatus, cutoff time.Time) ([]models.Order, error)
	UpdateStatusCAS(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (int64, error)
	SetFinals(ctx context.Context, orderID uuid.UUID, weightFinalKg, priceFinal decimal.Decimal) error
}
