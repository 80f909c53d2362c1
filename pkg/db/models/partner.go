package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bechdu/buyback-backend/pkg/enums"
	"github.com/bechdu/buyback-backend/pkg/types"
)

// Partner is a regional service agent. Phone is the identity key used across
// the API; the uuid primary key exists only for foreign keys.
type Partner struct {
	ID       uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Phone    string              `gorm:"column:phone;uniqueIndex;not null" json:"phone"`
	Name     string              `gorm:"column:name" json:"name"`
	Email    string              `gorm:"column:email" json:"email"`
	Address  string              `gorm:"column:address" json:"address"`
	State    string              `gorm:"column:state" json:"state"`
	PinCodes types.StringList    `gorm:"column:pin_codes;type:jsonb;serializer:json" json:"pinCodes"`
	Role     enums.PrincipalRole `gorm:"column:role;type:text;not null;default:'Partner'" json:"role"`

	// Coins is string-encoded in storage but always handled as an integer.
	// It must never go negative; debits pre-check the balance.
	Coins types.CoinBalance `gorm:"column:coins;type:text;not null;default:'0'" json:"coins"`

	// LoggedInDevice is the single-session device binding, overwritten on
	// every successful login.
	LoggedInDevice string     `gorm:"column:logged_in_device;default:''" json:"-"`
	OTP            string     `gorm:"column:otp;default:''" json:"-"`
	OTPExpiry      *time.Time `gorm:"column:otp_expiry" json:"-"`

	PickUpPersons []PickupPerson `gorm:"foreignKey:PartnerID;constraint:OnDelete:CASCADE" json:"pickUpPersons"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the legacy table name.
func (Partner) TableName() string {
	return "partners"
}
