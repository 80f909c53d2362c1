package orders

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
)

// Repository manages persistence for orders and the order-id counter.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// NextOrderSeq atomically increments and returns the order counter.
	NextOrderSeq(ctx context.Context) (int64, error)

	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	// FindByOrderIDLocked reads the order under a row lock for guarded
	// mutations inside a transaction.
	FindByOrderIDLocked(ctx context.Context, orderID string) (*models.Order, error)

	List(ctx context.Context, filter ListFilter, offset, limit int) ([]models.Order, int64, error)
	ListEligible(ctx context.Context, pincodes []string, offset, limit int) ([]models.Order, int64, error)
	ListAssignedToPartner(ctx context.Context, partnerPhone string, offset, limit int) ([]models.Order, int64, error)
	ListDelegatedToPickup(ctx context.Context, pickupPhone string, offset, limit int) ([]models.Order, int64, error)
	ListByUserPhone(ctx context.Context, phone string) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) NextOrderSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).Raw(
		`UPDATE counters
		 SET sequence_value = sequence_value + 1
		 WHERE name = 'orders'
		 RETURNING sequence_value`,
	).Scan(&seq).Error
	return seq, err
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *repository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByOrderIDLocked(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, offset, limit int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Pincode != "" {
		query = query.Where("user_order_pincode = ?", filter.Pincode)
	}
	if filter.Phone != "" {
		query = query.Where("user_phone = ?", filter.Phone)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) ListEligible(ctx context.Context, pincodes []string, offset, limit int) ([]models.Order, int64, error) {
	if len(pincodes) == 0 {
		return nil, 0, nil
	}

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ? AND partner_phone = '' AND user_order_pincode IN ?", enums.OrderStatusNew, pincodes)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) ListAssignedToPartner(ctx context.Context, partnerPhone string, offset, limit int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("partner_phone = ?", partnerPhone)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) ListDelegatedToPickup(ctx context.Context, pickupPhone string, offset, limit int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("partner_pickup_phone = ?", pickupPhone)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) ListByUserPhone(ctx context.Context, phone string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Where("user_phone = ?", phone).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
