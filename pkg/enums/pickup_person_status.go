package enums

import "fmt"

// PickupPersonStatus gates whether a pickup person may log in or be delegated orders.
type PickupPersonStatus string

const (
	PickupPersonStatusActive  PickupPersonStatus = "active"
	PickupPersonStatusBlocked PickupPersonStatus = "blocked"
)

var validPickupPersonStatuses = []PickupPersonStatus{
	PickupPersonStatusActive,
	PickupPersonStatusBlocked,
}

// String implements fmt.Stringer.
func (s PickupPersonStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PickupPersonStatus.
func (s PickupPersonStatus) IsValid() bool {
	for _, candidate := range validPickupPersonStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePickupPersonStatus converts raw input into a PickupPersonStatus.
func ParsePickupPersonStatus(value string) (PickupPersonStatus, error) {
	for _, candidate := range validPickupPersonStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pickup person status %q", value)
}
