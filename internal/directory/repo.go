package directory

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
)

// Repository manages persistence for partners and pickup persons.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePartner(ctx context.Context, partner *models.Partner) error
	SavePartner(ctx context.Context, partner *models.Partner) error
	DeletePartner(ctx context.Context, phone string) (int64, error)
	FindPartnerByPhone(ctx context.Context, phone string) (*models.Partner, error)
	FindPartnerByPhoneWithPickups(ctx context.Context, phone string) (*models.Partner, error)
	ListPartners(ctx context.Context, offset, limit int) ([]models.Partner, int64, error)
	ListPartnersByPincode(ctx context.Context, pincode string) ([]models.Partner, error)

	CreatePickupPerson(ctx context.Context, person *models.PickupPerson) error
	FindPickupByPhone(ctx context.Context, phone string) (*models.PickupPerson, error)
	ListPickupsByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.PickupPerson, error)
	UpdatePickupStatus(ctx context.Context, phone string, status enums.PickupPersonStatus) (int64, error)
	DeletePickupPerson(ctx context.Context, phone string) (int64, error)

	// PhoneInUse reports whether the phone already belongs to any partner or
	// pickup person. Phones are one namespace across both tables.
	PhoneInUse(ctx context.Context, phone string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a directory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePartner(ctx context.Context, partner *models.Partner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

func (r *repository) SavePartner(ctx context.Context, partner *models.Partner) error {
	return r.db.WithContext(ctx).Save(partner).Error
}

func (r *repository) DeletePartner(ctx context.Context, phone string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		Delete(&models.Partner{})
	return result.RowsAffected, result.Error
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

func (r *repository) FindPartnerByPhoneWithPickups(ctx context.Context, phone string) (*models.Partner, error) {
	var partner models.Partner
	if err := r.db.WithContext(ctx).
		Preload("PickUpPersons").
		Where("phone = ?", phone).
		First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *repository) ListPartners(ctx context.Context, offset, limit int) ([]models.Partner, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Partner{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var partners []models.Partner
	if err := r.db.WithContext(ctx).
		Preload("PickUpPersons").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&partners).Error; err != nil {
		return nil, 0, err
	}
	return partners, total, nil
}

func (r *repository) ListPartnersByPincode(ctx context.Context, pincode string) ([]models.Partner, error) {
	needle, err := json.Marshal([]string{pincode})
	if err != nil {
		return nil, err
	}

	var partners []models.Partner
	if err := r.db.WithContext(ctx).
		Where("pin_codes @> ?::jsonb", string(needle)).
		Order("created_at ASC").
		Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *repository) CreatePickupPerson(ctx context.Context, person *models.PickupPerson) error {
	return r.db.WithContext(ctx).Create(person).Error
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

func (r *repository) ListPickupsByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.PickupPerson, error) {
	var persons []models.PickupPerson
	if err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at ASC").
		Find(&persons).Error; err != nil {
		return nil, err
	}
	return persons, nil
}

func (r *repository) UpdatePickupStatus(ctx context.Context, phone string, status enums.PickupPersonStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PickupPerson{}).
		Where("phone = ?", phone).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *repository) DeletePickupPerson(ctx context.Context, phone string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		Delete(&models.PickupPerson{})
	return result.RowsAffected, result.Error
}

func (r *repository) PhoneInUse(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT (SELECT count(*) FROM partners WHERE phone = ?)
		      + (SELECT count(*) FROM pickup_persons WHERE phone = ?)`,
		phone, phone,
	).Scan(&count).Error
	return count > 0, err
}
