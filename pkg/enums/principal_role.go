package enums

import "fmt"

// PrincipalRole identifies which kind of actor a credential belongs to.
type PrincipalRole string

const (
	RoleAdmin PrincipalRole = "Admin"
	// RolePartner is the value stored on partner records.
	RolePartner PrincipalRole = "Partner"
	// RolePickUp keeps the camel-cased value the legacy clients send.
	RolePickUp PrincipalRole = "pickUp"
)

var validPrincipalRoles = []PrincipalRole{
	RoleAdmin,
	RolePartner,
	RolePickUp,
}

// String implements fmt.Stringer.
func (r PrincipalRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known PrincipalRole.
func (r PrincipalRole) IsValid() bool {
	for _, candidate := range validPrincipalRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParsePrincipalRole converts raw input into a PrincipalRole.
func ParsePrincipalRole(value string) (PrincipalRole, error) {
	for _, candidate := range validPrincipalRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid principal role %q", value)
}
