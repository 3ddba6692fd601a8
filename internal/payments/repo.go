package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
)

// Repository persists payments and their receipts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	AddReceipt(ctx context.Context, receipt *models.PaymentReceipt) error
	Latest(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	FindUnderReview(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	CountByStatus(ctx context.Context, status enums.PaymentStatus) (int64, error)
	Review(ctx context.Context, update ReviewUpdate) (int64, error)
}

// ReviewUpdate moves a still reviewable payment to its final status.
type ReviewUpdate struct {
	PaymentID  uuid.UUID
	Status     enums.PaymentStatus
	ReviewedBy uuid.UUID
	ReviewedAt time.Time
	Note       *string
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	for i := range payment.Receipts {
		if payment.Receipts[i].ID == uuid.Nil {
			payment.Receipts[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) AddReceipt(ctx context.Context, receipt *models.PaymentReceipt) error {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(receipt).Error
}

// Latest returns the most recent payment of the order.
func (r *repository) Latest(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Receipts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Order("id DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindUnderReview(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Receipts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("order_id = ? AND status = ?", orderID, enums.PaymentStatusUnderReview).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Receipts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountByStatus(ctx context.Context, status enums.PaymentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// Review applies the decision only while the payment is still reviewable.
func (r *repository) Review(ctx context.Context, update ReviewUpdate) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status IN ?", update.PaymentID, []enums.PaymentStatus{
			enums.PaymentStatusPending,
			enums.PaymentStatusUnderReview,
		}).
		Updates(map[string]any{
			"status":      update.Status,
			"reviewed_by": update.ReviewedBy,
			"reviewed_at": update.ReviewedAt,
			"review_note": update.Note,
			"updated_at":  update.ReviewedAt,
		})
	return res.RowsAffected, res.Error
}
