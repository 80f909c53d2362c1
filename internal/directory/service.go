package directory

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	dbpkg "github.com/bechdu/buyback-backend/pkg/db"
	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/pagination"
	"github.com/bechdu/buyback-backend/pkg/types"
)

var (
	phoneRe   = regexp.MustCompile(`^\d{10}$`)
	pincodeRe = regexp.MustCompile(`^\d{6}$`)
)

// Service exposes the partner and pickup-person directory.
type Service interface {
	CreatePartner(ctx context.Context, input CreatePartnerInput) (*models.Partner, error)
	UpdatePartner(ctx context.Context, phone string, input UpdatePartnerInput) (*models.Partner, error)
	DeletePartner(ctx context.Context, phone string) error
	GetPartner(ctx context.Context, phone string) (*models.Partner, error)
	ListPartners(ctx context.Context, page pagination.Params) ([]models.Partner, int64, error)
	PartnersForPincode(ctx context.Context, pincode string) ([]models.Partner, error)

	AddPickupPerson(ctx context.Context, input AddPickupPersonInput) (*models.PickupPerson, error)
	ListPickupPersons(ctx context.Context, partnerPhone string) ([]models.PickupPerson, error)
	SetPickupStatus(ctx context.Context, partnerPhone, phone string, status enums.PickupPersonStatus) error
	RemovePickupPerson(ctx context.Context, partnerPhone, phone string) error

	// AuthorizePartner resolves the partner for an authenticated request and
	// enforces the single-session device binding.
	AuthorizePartner(ctx context.Context, phone, device string) (*models.Partner, error)
	// AuthorizePickup does the same for pickup persons, additionally
	// rejecting blocked accounts.
	AuthorizePickup(ctx context.Context, phone, device string) (*models.PickupPerson, error)
}

type service struct {
	repo Repository
}

// NewService builds a directory service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("directory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreatePartner(ctx context.Context, input CreatePartnerInput) (*models.Partner, error) {
	if !phoneRe.MatchString(input.Phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone must be a 10 digit number")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validatePincodes(input.PinCodes); err != nil {
		return nil, err
	}

	inUse, err := s.repo.PhoneInUse(ctx, input.Phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking phone")
	}
	if inUse {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
	}

	partner := &models.Partner{
		Phone:    input.Phone,
		Name:     input.Name,
		Email:    input.Email,
		Address:  input.Address,
		State:    input.State,
		PinCodes: types.StringList(input.PinCodes),
		Role:     enums.RolePartner,
	}
	if err := s.repo.CreatePartner(ctx, partner); err != nil {
		// The pre-check races with concurrent registrations; the unique
		// index is the authority.
		if dbpkg.IsUniqueViolation(err, "idx_partners_phone") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating partner")
	}
	return partner, nil
}

func (s *service) UpdatePartner(ctx context.Context, phone string, input UpdatePartnerInput) (*models.Partner, error) {
	partner, err := s.findPartner(ctx, phone)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		partner.Name = *input.Name
	}
	if input.Email != nil {
		partner.Email = *input.Email
	}
	if input.Address != nil {
		partner.Address = *input.Address
	}
	if input.State != nil {
		partner.State = *input.State
	}
	if input.PinCodes != nil {
		if err := validatePincodes(*input.PinCodes); err != nil {
			return nil, err
		}
		partner.PinCodes = types.StringList(*input.PinCodes)
	}

	if err := s.repo.SavePartner(ctx, partner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating partner")
	}
	return partner, nil
}

func (s *service) DeletePartner(ctx context.Context, phone string) error {
	affected, err := s.repo.DeletePartner(ctx, phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting partner")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
	}
	return nil
}

func (s *service) GetPartner(ctx context.Context, phone string) (*models.Partner, error) {
	partner, err := s.repo.FindPartnerByPhoneWithPickups(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading partner")
	}
	return partner, nil
}

func (s *service) ListPartners(ctx context.Context, page pagination.Params) ([]models.Partner, int64, error) {
	page = page.Normalize()
	partners, total, err := s.repo.ListPartners(ctx, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing partners")
	}
	return partners, total, nil
}

func (s *service) PartnersForPincode(ctx context.Context, pincode string) ([]models.Partner, error) {
	if !pincodeRe.MatchString(pincode) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pincode must be a 6 digit number")
	}
	partners, err := s.repo.ListPartnersByPincode(ctx, pincode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing partners by pincode")
	}
	return partners, nil
}

func (s *service) AddPickupPerson(ctx context.Context, input AddPickupPersonInput) (*models.PickupPerson, error) {
	if !phoneRe.MatchString(input.Phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone must be a 10 digit number")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	partner, err := s.findPartner(ctx, input.PartnerPhone)
	if err != nil {
		return nil, err
	}

	inUse, err := s.repo.PhoneInUse(ctx, input.Phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking phone")
	}
	if inUse {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
	}

	person := &models.PickupPerson{
		PartnerID: partner.ID,
		Phone:     input.Phone,
		Name:      input.Name,
		Role:      enums.RolePickUp,
		Status:    enums.PickupPersonStatusActive,
	}
	if err := s.repo.CreatePickupPerson(ctx, person); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_pickup_persons_phone") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating pickup person")
	}
	return person, nil
}

func (s *service) ListPickupPersons(ctx context.Context, partnerPhone string) ([]models.PickupPerson, error) {
	partner, err := s.findPartner(ctx, partnerPhone)
	if err != nil {
		return nil, err
	}
	persons, err := s.repo.ListPickupsByPartner(ctx, partner.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing pickup persons")
	}
	return persons, nil
}

func (s *service) SetPickupStatus(ctx context.Context, partnerPhone, phone string, status enums.PickupPersonStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	if _, err := s.ownedPickup(ctx, partnerPhone, phone); err != nil {
		return err
	}
	affected, err := s.repo.UpdatePickupStatus(ctx, phone, status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating pickup status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pickup person not found")
	}
	return nil
}

func (s *service) RemovePickupPerson(ctx context.Context, partnerPhone, phone string) error {
	if _, err := s.ownedPickup(ctx, partnerPhone, phone); err != nil {
		return err
	}
	affected, err := s.repo.DeletePickupPerson(ctx, phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting pickup person")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pickup person not found")
	}
	return nil
}

func (s *service) AuthorizePartner(ctx context.Context, phone, device string) (*models.Partner, error) {
	partner, err := s.findPartner(ctx, phone)
	if err != nil {
		return nil, err
	}
	if partner.LoggedInDevice == "" || partner.LoggedInDevice != device {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "")
	}
	return partner, nil
}

func (s *service) AuthorizePickup(ctx context.Context, phone, device string) (*models.PickupPerson, error) {
	person, err := s.findPickup(ctx, phone)
	if err != nil {
		return nil, err
	}
	if person.Status == enums.PickupPersonStatusBlocked {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "")
	}
	if person.LoggedInDevice == "" || person.LoggedInDevice != device {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "")
	}
	return person, nil
}

func (s *service) findPartner(ctx context.Context, phone string) (*models.Partner, error) {
	partner, err := s.repo.FindPartnerByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading partner")
	}
	return partner, nil
}

func (s *service) findPickup(ctx context.Context, phone string) (*models.PickupPerson, error) {
	person, err := s.repo.FindPickupByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup person not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading pickup person")
	}
	return person, nil
}

// ownedPickup verifies the pickup person belongs to the partner making the
// change. Admins pass the owning partner's phone through unchanged.
func (s *service) ownedPickup(ctx context.Context, partnerPhone, phone string) (*models.PickupPerson, error) {
	partner, err := s.findPartner(ctx, partnerPhone)
	if err != nil {
		return nil, err
	}
	person, err := s.findPickup(ctx, phone)
	if err != nil {
		return nil, err
	}
	if person.PartnerID != partner.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "")
	}
	return person, nil
}

func validatePincodes(pincodes []string) error {
	for _, pin := range pincodes {
		if !pincodeRe.MatchString(pin) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid pincode %q", pin))
		}
	}
	return nil
}
