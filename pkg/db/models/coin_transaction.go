package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bechdu/buyback-backend/pkg/enums"
)

// CoinTransaction is one append-only ledger entry. Every balance mutation is
// paired with exactly one of these in the same database transaction.
type CoinTransaction struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PartnerPhone string                `gorm:"column:partner_phone;not null;index" json:"partnerPhone"`
	Type         enums.TransactionType `gorm:"column:type;type:text;not null" json:"type"`
	Coins        int64                 `gorm:"column:coins;not null" json:"coins"`
	Message      string                `gorm:"column:message;not null" json:"message"`

	// Payment linkage fields, populated for bank-transfer credits.
	Price         *int64  `gorm:"column:price" json:"price,omitempty"`
	GSTPrice      *int64  `gorm:"column:gst_price" json:"gstPrice,omitempty"`
	GSTPercentage *int64  `gorm:"column:gst_percentage" json:"gstPercentage,omitempty"`
	PartnerState  string  `gorm:"column:partner_state;default:''" json:"partnerState,omitempty"`
	HomeState     string  `gorm:"column:home_state;default:''" json:"HomeState,omitempty"`
	Image         string  `gorm:"column:image;default:''" json:"image,omitempty"`
	OrderID       string  `gorm:"column:order_id;default:''" json:"orderID,omitempty"`
	PaymentID     *uuid.UUID `gorm:"column:payment_id;type:uuid" json:"paymentId,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"timestamp"`
}

// TableName pins the legacy table name.
func (CoinTransaction) TableName() string {
	return "coin_transactions"
}
