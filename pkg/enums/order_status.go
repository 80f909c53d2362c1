package enums

import "fmt"

// OrderStatus tracks the lifecycle of a buy-back order.
type OrderStatus string

const (
	OrderStatusNew         OrderStatus = "new"
	OrderStatusProcessing  OrderStatus = "processing"
	OrderStatusRescheduled OrderStatus = "rescheduled"
	OrderStatusCancelled   OrderStatus = "cancelled"
	// OrderStatusCompleted keeps the capitalized value the mobile clients expect.
	OrderStatusCompleted OrderStatus = "Completed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusProcessing,
	OrderStatusRescheduled,
	OrderStatusCancelled,
	OrderStatusCompleted,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusCompleted
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
