package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bechdu/buyback-backend/pkg/enums"
)

// PickupPerson is a sub-principal owned by a partner. Phones are unique
// across the whole directory, partners included.
type PickupPerson struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PartnerID uuid.UUID `gorm:"column:partner_id;type:uuid;not null;index" json:"-"`

	Phone  string                   `gorm:"column:phone;uniqueIndex;not null" json:"phone"`
	Name   string                   `gorm:"column:name" json:"name"`
	Role   enums.PrincipalRole      `gorm:"column:role;type:text;not null;default:'pickUp'" json:"role"`
	Status enums.PickupPersonStatus `gorm:"column:status;type:text;not null;default:'active'" json:"status"`

	LoggedInDevice string     `gorm:"column:logged_in_device;default:''" json:"-"`
	OTP            string     `gorm:"column:otp;default:''" json:"-"`
	OTPExpiry      *time.Time `gorm:"column:otp_expiry" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the legacy table name.
func (PickupPerson) TableName() string {
	return "pickup_persons"
}
