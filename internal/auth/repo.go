package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/pkg/db/models"
)

// Repository reads and updates login state for both principal kinds.
type Repository interface {
	FindPartnerByPhone(ctx context.Context, phone string) (*models.Partner, error)
	SavePartner(ctx context.Context, partner *models.Partner) error
	FindPickupByPhone(ctx context.Context, phone string) (*models.PickupPerson, error)
	SavePickup(ctx context.Context, person *models.PickupPerson) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an auth repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindPartnerByPhone(ctx context.Context, phone string) (*models.Partner, error) {
	var partner models.Partner
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *repository) SavePartner(ctx context.Context, partner *models.Partner) error {
	return r.db.WithContext(ctx).Save(partner).Error
}

func (r *repository) FindPickupByPhone(ctx context.Context, phone string) (*models.PickupPerson, error) {
	var person models.PickupPerson
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *repository) SavePickup(ctx context.Context, person *models.PickupPerson) error {
	return r.db.WithContext(ctx).Save(person).Error
}
