package directory

// CreatePartnerInput captures a new partner registration by an admin.
type CreatePartnerInput struct {
	Phone    string   `json:"phone"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Address  string   `json:"address"`
	State    string   `json:"state"`
	PinCodes []string `json:"pinCodes"`
}

// UpdatePartnerInput captures the partner fields an admin may change. Nil
// means leave the field untouched. Phone is immutable.
type UpdatePartnerInput struct {
	Name     *string   `json:"name"`
	Email    *string   `json:"email"`
	Address  *string   `json:"address"`
	State    *string   `json:"state"`
	PinCodes *[]string `json:"pinCodes"`
}

// AddPickupPersonInput registers a pickup person under a partner.
type AddPickupPersonInput struct {
	PartnerPhone string `json:"-"`
	Phone        string `json:"phone"`
	Name         string `json:"name"`
}
