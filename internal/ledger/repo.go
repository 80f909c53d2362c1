package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
)

// Repository manages persistence for partner coin balances and ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreditBalance(ctx context.Context, partnerPhone string, coins int64) (int64, error)
	DebitBalance(ctx context.Context, partnerPhone string, coins int64) (int64, error)
	PartnerExists(ctx context.Context, partnerPhone string) (bool, error)
	Balance(ctx context.Context, partnerPhone string) (int64, error)
	CreateTransaction(ctx context.Context, entry *models.CoinTransaction) error
	FindTransaction(ctx context.Context, id uuid.UUID) (*models.CoinTransaction, error)
	ListByPartner(ctx context.Context, partnerPhone string, kind *enums.TransactionType, offset, limit int) ([]models.CoinTransaction, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreditBalance adds coins to a partner balance. The balance column is
// text-encoded, so the arithmetic casts through bigint in SQL.
func (r *repository) CreditBalance(ctx context.Context, partnerPhone string, coins int64) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE partners
		 SET coins = (coins::bigint + ?)::text, updated_at = now()
		 WHERE phone = ?`,
		coins, partnerPhone,
	)
	return result.RowsAffected, result.Error
}

// DebitBalance subtracts coins only when the current balance covers the
// amount. Zero rows affected means the partner is missing or underfunded.
func (r *repository) DebitBalance(ctx context.Context, partnerPhone string, coins int64) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE partners
		 SET coins = (coins::bigint - ?)::text, updated_at = now()
		 WHERE phone = ? AND coins::bigint >= ?`,
		coins, partnerPhone, coins,
	)
	return result.RowsAffected, result.Error
}

func (r *repository) PartnerExists(ctx context.Context, partnerPhone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Partner{}).
		Where("phone = ?", partnerPhone).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Balance(ctx context.Context, partnerPhone string) (int64, error) {
	var partner models.Partner
	if err := r.db.WithContext(ctx).
		Select("coins").
		Where("phone = ?", partnerPhone).
		First(&partner).Error; err != nil {
		return 0, err
	}
	return partner.Coins.Int(), nil
}

func (r *repository) CreateTransaction(ctx context.Context, entry *models.CoinTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindTransaction(ctx context.Context, id uuid.UUID) (*models.CoinTransaction, error) {
	var entry models.CoinTransaction
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListByPartner(ctx context.Context, partnerPhone string, kind *enums.TransactionType, offset, limit int) ([]models.CoinTransaction, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CoinTransaction{}).
		Where("partner_phone = ?", partnerPhone)
	if kind != nil {
		query = query.Where("type = ?", *kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.CoinTransaction
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
