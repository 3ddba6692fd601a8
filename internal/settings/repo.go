package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
)

// Repository reads and writes the settings singleton.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context) (*models.Setting, error)
	CreateIfMissing(ctx context.Context, setting *models.Setting) error
	Save(ctx context.Context, setting *models.Setting) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).
		Where("id = ?", models.SettingsSingletonID).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// CreateIfMissing inserts the row unless another writer got there first.
func (r *repository) CreateIfMissing(ctx context.Context, setting *models.Setting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(setting).Error
}

func (r *repository) Save(ctx context.Context, setting *models.Setting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}
