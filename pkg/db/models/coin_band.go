package models

import (
	"time"

	"github.com/google/uuid"
)

// CoinBand maps an inclusive quoted-price range to a coin reward. Bands are
// assumed non-overlapping; lookups take the first match.
type CoinBand struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StartRange int64     `gorm:"column:start_range;not null" json:"startRange"`
	EndRange   int64     `gorm:"column:end_range;not null" json:"endRange"`
	Coins      int64     `gorm:"column:coins;not null" json:"coins"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the legacy table name.
func (CoinBand) TableName() string {
	return "coin_bands"
}
