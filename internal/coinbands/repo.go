package coinbands

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/pkg/db/models"
)

// Repository manages persistence for coin reward bands.
type Repository interface {
	Create(ctx context.Context, band *models.CoinBand) error
	Save(ctx context.Context, band *models.CoinBand) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CoinBand, error)
	List(ctx context.Context) ([]models.CoinBand, error)
	// FindForPrice returns the first band whose inclusive range covers the
	// price, or gorm.ErrRecordNotFound.
	FindForPrice(ctx context.Context, price int64) (*models.CoinBand, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a coin band repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, band *models.CoinBand) error {
	return r.db.WithContext(ctx).Create(band).Error
}

func (r *repository) Save(ctx context.Context, band *models.CoinBand) error {
	return r.db.WithContext(ctx).Save(band).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.CoinBand{})
	return result.RowsAffected, result.Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CoinBand, error) {
	var band models.CoinBand
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&band).Error; err != nil {
		return nil, err
	}
	return &band, nil
}

func (r *repository) List(ctx context.Context) ([]models.CoinBand, error) {
	var bands []models.CoinBand
	if err := r.db.WithContext(ctx).
		Order("start_range ASC").
		Find(&bands).Error; err != nil {
		return nil, err
	}
	return bands, nil
}

func (r *repository) FindForPrice(ctx context.Context, price int64) (*models.CoinBand, error) {
	var band models.CoinBand
	if err := r.db.WithContext(ctx).
		Where("start_range <= ? AND end_range >= ?", price, price).
		Order("start_range ASC").
		First(&band).Error; err != nil {
		return nil, err
	}
	return &band, nil
}
