package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bechdu/buyback-backend/pkg/enums"
)

// Payment is a manual bank-transfer proof submitted by a partner to top up
// coins. Admin approval credits the ledger exactly once.
type Payment struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PartnerPhone string    `gorm:"column:partner_phone;not null;index" json:"partnerPhone"`
	PartnerName  string    `gorm:"column:partner_name" json:"partnerName"`
	PartnerState string    `gorm:"column:partner_state;default:''" json:"partnerState"`
	HomeState    string    `gorm:"column:home_state;default:''" json:"HomeState"`

	Image         string `gorm:"column:image;default:''" json:"image,omitempty"`
	Coins         int64  `gorm:"column:coins;not null" json:"coins"`
	Price         int64  `gorm:"column:price;not null" json:"price"`
	GSTPrice      int64  `gorm:"column:gst_price;not null;default:0" json:"gstPrice"`
	GSTPercentage int64  `gorm:"column:gst_percentage;not null;default:0" json:"gstPercentage"`
	Message       string `gorm:"column:message;default:'Bank Transfer'" json:"message"`

	Status enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the legacy table name.
func (Payment) TableName() string {
	return "payments"
}
