package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/internal/sms"
	pkgauth "github.com/bechdu/buyback-backend/pkg/auth"
	"github.com/bechdu/buyback-backend/pkg/config"
	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
)

// LoginResult is returned after a successful OTP exchange.
type LoginResult struct {
	Token string              `json:"token"`
	Role  enums.PrincipalRole `json:"role"`
	Phone string              `json:"phone"`
}

// Service runs the OTP login flow for partners and pickup persons. A
// successful login overwrites the principal's device binding, which is the
// whole session model: the previous device's token keeps verifying but fails
// the device match.
type Service interface {
	SendOTP(ctx context.Context, phone string) error
	Login(ctx context.Context, phone, otp, device string) (*LoginResult, error)
}

type service struct {
	repo   Repository
	sender sms.Sender
	jwtCfg config.JWTConfig
	otpCfg config.OTPConfig
	now    func() time.Time
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Repo   Repository
	Sender sms.Sender
	JWT    config.JWTConfig
	OTP    config.OTPConfig
	Now    func() time.Time
}

// NewService builds an auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("sms sender required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:   params.Repo,
		sender: params.Sender,
		jwtCfg: params.JWT,
		otpCfg: params.OTP,
		now:    params.Now,
	}, nil
}

func (s *service) SendOTP(ctx context.Context, phone string) error {
	if phone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	otp, err := generateOTP()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating otp")
	}
	expiry := s.now().Add(s.otpCfg.TTL)

	partner, person, err := s.findPrincipal(ctx, phone)
	if err != nil {
		return err
	}

	// Deliver first; a failed send must not leave a usable OTP behind.
	if err := s.sender.SendOTP(ctx, phone, otp); err != nil {
		return err
	}

	switch {
	case partner != nil:
		partner.OTP = otp
		partner.OTPExpiry = &expiry
		if err := s.repo.SavePartner(ctx, partner); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving otp")
		}
	case person != nil:
		person.OTP = otp
		person.OTPExpiry = &expiry
		if err := s.repo.SavePickup(ctx, person); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving otp")
		}
	}
	return nil
}

func (s *service) Login(ctx context.Context, phone, otp, device string) (*LoginResult, error) {
	if phone == "" || otp == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone and otp are required")
	}
	if device == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device fingerprint is required")
	}

	partner, person, err := s.findPrincipal(ctx, phone)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch {
	case partner != nil:
		if !otpValid(partner.OTP, partner.OTPExpiry, otp, now) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired otp")
		}
		partner.OTP = ""
		partner.OTPExpiry = nil
		partner.LoggedInDevice = device
		if err := s.repo.SavePartner(ctx, partner); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving login state")
		}
		return s.mint(now, partner.Phone, partner.Role, device)

	default:
		if person.Status == enums.PickupPersonStatusBlocked {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "")
		}
		if !otpValid(person.OTP, person.OTPExpiry, otp, now) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired otp")
		}
		person.OTP = ""
		person.OTPExpiry = nil
		person.LoggedInDevice = device
		if err := s.repo.SavePickup(ctx, person); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving login state")
		}
		return s.mint(now, person.Phone, person.Role, device)
	}
}

func (s *service) mint(now time.Time, phone string, role enums.PrincipalRole, device string) (*LoginResult, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		Phone:          phone,
		Role:           role,
		LoggedInDevice: device,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}
	return &LoginResult{Token: token, Role: role, Phone: phone}, nil
}

// findPrincipal resolves a phone to exactly one of partner or pickup person.
func (s *service) findPrincipal(ctx context.Context, phone string) (*models.Partner, *models.PickupPerson, error) {
	partner, err := s.repo.FindPartnerByPhone(ctx, phone)
	if err == nil {
		return partner, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading principal")
	}

	person, err := s.repo.FindPickupByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading principal")
	}
	return nil, person, nil
}

func otpValid(stored string, expiry *time.Time, presented string, now time.Time) bool {
	if stored == "" || presented == "" || stored != presented {
		return false
	}
	if expiry == nil || !expiry.After(now) {
		return false
	}
	return true
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}
