package refunds

import (
	"context"

	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/pkg/db/models"
)

// Repository persists refund records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, refund *models.Refund) error
	List(ctx context.Context, offset, limit int) ([]models.Refund, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a refund repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *repository) List(ctx context.Context, offset, limit int) ([]models.Refund, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var refunds []models.Refund
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&refunds).Error; err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}
