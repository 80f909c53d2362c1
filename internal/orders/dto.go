package orders

import (
	"github.com/bechdu/buyback-backend/pkg/enums"
	"github.com/bechdu/buyback-backend/pkg/pagination"
	"github.com/bechdu/buyback-backend/pkg/types"
)

// CreateOrderInput is the storefront payload for a new pickup order.
type CreateOrderInput struct {
	User struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		AddPhone string `json:"addPhone"`
		Address  string `json:"address"`
		Pincode  string `json:"pincode"`
		City     string `json:"city"`
	} `json:"user"`
	Payment struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"payment"`
	PickUp struct {
		Date string `json:"date"`
		Time string `json:"time"`
	} `json:"pickUpDetails"`
	Product struct {
		Name    string        `json:"name"`
		Image   string        `json:"image"`
		Price   int64         `json:"price"`
		Options types.JSONMap `json:"options"`
	} `json:"productDetails"`
	Promo struct {
		Code  string `json:"code"`
		Price string `json:"price"`
	} `json:"promo"`
	Platform string `json:"platform"`
}

// AcceptOrderInput identifies the partner taking an order.
type AcceptOrderInput struct {
	OrderID      string
	PartnerPhone string
	PartnerName  string
}

// DelegateInput hands an accepted order to one of the partner's pickup
// persons.
type DelegateInput struct {
	OrderID           string
	PartnerPhone      string
	PickUpPersonName  string
	PickUpPersonPhone string
}

// RequoteInput changes the quoted price of an accepted order.
type RequoteInput struct {
	OrderID  string
	NewPrice int64
	Options  types.JSONMap
	// ActorPhone is the partner or pickup person making the change.
	ActorPhone string
	ActorRole  enums.PrincipalRole
}

// RescheduleInput moves the pickup slot.
type RescheduleInput struct {
	OrderID    string
	Date       string
	Time       string
	ActorPhone string
	ActorRole  enums.PrincipalRole
}

// CancelInput cancels an order with a reason.
type CancelInput struct {
	OrderID string
	Reason  string
	// ActorPhone is empty for customer or admin cancellations.
	ActorPhone string
	ActorRole  enums.PrincipalRole
}

// CompleteInput finishes an order with the collected-device evidence.
type CompleteInput struct {
	OrderID      string
	FinalPrice   string
	IMEINumber   string
	DeviceBill   string
	IDCard       string
	DeviceImages []string
	ActorPhone   string
	ActorRole    enums.PrincipalRole
}

// ListFilter narrows the admin order listing.
type ListFilter struct {
	Status  *enums.OrderStatus
	Pincode string
	// Phone matches the customer phone.
	Phone string
	Page  pagination.Params
}
