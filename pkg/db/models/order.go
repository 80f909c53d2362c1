package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bechdu/buyback-backend/pkg/enums"
	"github.com/bechdu/buyback-backend/pkg/types"
)

// UserSnapshot is the customer contact captured at order time. It is
// deliberately denormalized: later profile edits never alter historical orders.
type UserSnapshot struct {
	Name     string `gorm:"column:name" json:"name"`
	Email    string `gorm:"column:email" json:"email"`
	Phone    string `gorm:"column:phone;not null" json:"phone"`
	AddPhone string `gorm:"column:add_phone;default:''" json:"addPhone"`
	Address  string `gorm:"column:address" json:"address"`
	Pincode  string `gorm:"column:pincode" json:"pincode"`
	City     string `gorm:"column:city" json:"city"`
	// OrderPincode is derived once from the free-text address at creation and
	// never recomputed.
	OrderPincode string `gorm:"column:order_pincode;default:''" json:"orderpincode"`
}

// PaymentInfo is the free-form payout preference captured at creation.
type PaymentInfo struct {
	Type string `gorm:"column:type" json:"type"`
	ID   string `gorm:"column:id;default:''" json:"id"`
}

// PickupSlot is the scheduled pickup window; replaced wholesale on reschedule.
type PickupSlot struct {
	Date string `gorm:"column:date" json:"date"`
	Time string `gorm:"column:time" json:"time"`
}

// ProductDetails is the quoted device; price and options change on requote.
type ProductDetails struct {
	Name    string        `gorm:"column:name" json:"name"`
	Slug    string        `gorm:"column:slug" json:"slug"`
	Image   string        `gorm:"column:image" json:"image"`
	Price   int64         `gorm:"column:price;not null" json:"price"`
	Options types.JSONMap `gorm:"column:options;type:jsonb;serializer:json" json:"options"`
}

// PromoInfo records an applied promo code, if any.
type PromoInfo struct {
	Code  string `gorm:"column:code;default:'Not Applicable'" json:"code"`
	Price string `gorm:"column:price;default:''" json:"price"`
}

// DeviceInfo is the completion evidence; present only once the order is Completed.
type DeviceInfo struct {
	FinalPrice   string           `gorm:"column:final_price" json:"finalPrice"`
	IMEINumber   string           `gorm:"column:imei_number" json:"imeiNumber"`
	DeviceBill   string           `gorm:"column:bill" json:"deviceBill"`
	IDCard       string           `gorm:"column:id_card" json:"idCard"`
	DeviceImages types.StringList `gorm:"column:images;type:jsonb;serializer:json" json:"deviceImages"`
}

// PartnerAssignment holds the current partner and pickup-person assignment.
// Empty strings mean unassigned / undelegated.
type PartnerAssignment struct {
	PartnerName       string `gorm:"column:name;default:''" json:"partnerName"`
	PartnerPhone      string `gorm:"column:phone;default:''" json:"partnerPhone"`
	PickUpPersonName  string `gorm:"column:pickup_name;default:''" json:"pickUpPersonName"`
	PickUpPersonPhone string `gorm:"column:pickup_phone;default:''" json:"pickUpPersonPhone"`
}

// Order is a buy-back pickup order. It is never physically deleted; every
// state change appends to Logs in the same transaction.
type Order struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID string    `gorm:"column:order_id;uniqueIndex;not null" json:"orderId"`

	User    UserSnapshot   `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	Payment PaymentInfo    `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	PickUp  PickupSlot     `gorm:"embedded;embeddedPrefix:pickup_" json:"pickUpDetails"`
	Product ProductDetails `gorm:"embedded;embeddedPrefix:product_" json:"productDetails"`
	Promo   PromoInfo      `gorm:"embedded;embeddedPrefix:promo_" json:"promo"`
	Device  DeviceInfo     `gorm:"embedded;embeddedPrefix:device_" json:"deviceInfo"`
	Partner PartnerAssignment `gorm:"embedded;embeddedPrefix:partner_" json:"partner"`

	// Coins is the reward computed once from the coin bands at creation.
	Coins              int64             `gorm:"column:coins;not null;default:0" json:"coins"`
	Status             enums.OrderStatus `gorm:"column:status;type:text;not null;default:'new'" json:"status"`
	CancellationReason string            `gorm:"column:cancellation_reason;default:''" json:"cancellationReason"`
	Logs               types.OrderLogs   `gorm:"column:logs;type:jsonb;serializer:json" json:"logs"`
	Platform           string            `gorm:"column:platform;default:''" json:"platform"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the legacy table name.
func (Order) TableName() string {
	return "orders"
}
