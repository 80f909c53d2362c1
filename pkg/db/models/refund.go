package models

import (
	"time"

	"github.com/google/uuid"
)

// Refund is a write-only reconciliation record noting coins owed back to a
// partner after an assigned order was cancelled or de-assigned. The core
// never reads these back and never auto-credits the ledger from them.
type Refund struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID            string    `gorm:"column:order_id;not null;index" json:"orderID"`
	CancellationReason string    `gorm:"column:cancellation_reason;default:''" json:"cancellationReason"`
	PartnerPhone       string    `gorm:"column:partner_phone;not null" json:"partnerPhone"`
	PartnerName        string    `gorm:"column:partner_name" json:"partnerName"`
	Coins              int64     `gorm:"column:coins;not null" json:"coins"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"timestamp"`
}

// TableName pins the legacy table name.
func (Refund) TableName() string {
	return "refunds"
}
