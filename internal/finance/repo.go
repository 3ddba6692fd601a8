package finance

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
)

// Repository reads the order and payment aggregates behind the reports.
type Repository interface {
	ListRealized(ctx context.Context, start, end *time.Time) ([]models.Order, error)
	CountOrdersByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	CountPaymentsByStatus(ctx context.Context, status enums.PaymentStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a finance repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ListRealized returns revenue-bearing orders created inside [start, end].
func (r *repository) ListRealized(ctx context.Context, start, end *time.Time) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Select("id", "currency", "status", "price_estimated", "price_final", "created_at").
		Where("status IN ?", enums.RealizedOrderStatuses)
	if start != nil {
		query = query.Where("created_at >= ?", start.UTC())
	}
	if end != nil {
		query = query.Where("created_at <= ?", end.UTC())
	}
	var rows []models.Order
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type statusCount struct {
	Status enums.OrderStatus
	Count  int64
}

func (r *repository) CountOrdersByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *repository) CountPaymentsByStatus(ctx context.Context, status enums.PaymentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
