package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
)

// Repository persists the weight-banded pricing rules.
type Repository interface {
	ListActive(ctx context.Context, direction enums.Direction) ([]models.PricingRule, error)
	List(ctx context.Context, direction *enums.Direction) ([]models.PricingRule, error)
	Find(ctx context.Context, id uuid.UUID) (*models.PricingRule, error)
	Create(ctx context.Context, rule *models.PricingRule) error
	Save(ctx context.Context, rule *models.PricingRule) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing rule repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ListActive returns the active bands for direction, lowest band first.
func (r *repository) ListActive(ctx context.Context, direction enums.Direction) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	err := r.db.WithContext(ctx).
		Where("direction = ? AND active = ?", direction, true).
		Order("min_weight ASC").
		Order("id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *repository) List(ctx context.Context, direction *enums.Direction) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	query := r.db.WithContext(ctx)
	if direction != nil {
		query = query.Where("direction = ?", *direction)
	}
	err := query.
		Order("direction ASC").
		Order("min_weight ASC").
		Find(&rules).Error
	return rules, err
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.PricingRule, error) {
	var rule models.PricingRule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) Create(ctx context.Context, rule *models.PricingRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) Save(ctx context.Context, rule *models.PricingRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}
