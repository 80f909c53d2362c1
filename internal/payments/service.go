package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/internal/ledger"
	"github.com/bechdu/buyback-backend/pkg/config"
	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/pagination"
)

const bankTransferMessage = "Bank Transfer"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SubmitInput is a partner's bank-transfer proof for a coin top-up.
type SubmitInput struct {
	PartnerPhone  string
	PartnerName   string
	PartnerState  string
	Image         string
	Coins         int64
	Price         int64
	GSTPercentage int64
}

// Service handles manual coin top-ups: partners submit transfer proofs,
// admins approve or reject them. Approval credits the ledger exactly once.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Payment, error)
	List(ctx context.Context, partnerPhone string, page pagination.Params) ([]models.Payment, int64, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	Reject(ctx context.Context, id uuid.UUID) (*models.Payment, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	ledger  ledger.Service
	company config.CompanyConfig
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Ledger  ledger.Service
	Company config.CompanyConfig
}

// NewService builds a payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		ledger:  params.Ledger,
		company: params.Company,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Payment, error) {
	if input.PartnerPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner phone is required")
	}
	if input.Coins <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coins must be positive")
	}
	if input.Price <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.GSTPercentage < 0 || input.GSTPercentage > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gst percentage out of range")
	}

	payment := &models.Payment{
		PartnerPhone:  input.PartnerPhone,
		PartnerName:   input.PartnerName,
		PartnerState:  input.PartnerState,
		HomeState:     s.company.State,
		Image:         input.Image,
		Coins:         input.Coins,
		Price:         input.Price,
		GSTPrice:      gstAmount(input.Price, input.GSTPercentage),
		GSTPercentage: input.GSTPercentage,
		Message:       bankTransferMessage,
		Status:        enums.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payment")
	}
	return payment, nil
}

func (s *service) List(ctx context.Context, partnerPhone string, page pagination.Params) ([]models.Payment, int64, error) {
	page = page.Normalize()
	payments, total, err := s.repo.List(ctx, partnerPhone, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payments")
	}
	return payments, total, nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		payment, err = repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment")
		}

		// The pending-only predicate makes a double approve a no-op race
		// loser instead of a double credit.
		affected, err := repo.MarkStatus(ctx, id, enums.PaymentStatusApproved)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approving payment")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "payment already decided")
		}

		price := payment.Price
		gstPrice := payment.GSTPrice
		gstPct := payment.GSTPercentage
		_, err = s.ledger.Credit(ctx, tx, ledger.EntryInput{
			PartnerPhone:  payment.PartnerPhone,
			Coins:         payment.Coins,
			Message:       bankTransferMessage,
			Price:         &price,
			GSTPrice:      &gstPrice,
			GSTPercentage: &gstPct,
			PartnerState:  payment.PartnerState,
			HomeState:     payment.HomeState,
			Image:         payment.Image,
			PaymentID:     &payment.ID,
		})
		if err != nil {
			return err
		}

		payment.Status = enums.PaymentStatusApproved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) Reject(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	affected, err := s.repo.MarkStatus(ctx, id, enums.PaymentStatusRejected)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rejecting payment")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment already decided")
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment")
	}
	return payment, nil
}

// gstAmount computes the GST portion of a price with decimal arithmetic,
// rounded to whole rupees half-up.
func gstAmount(price, percentage int64) int64 {
	if percentage == 0 {
		return 0
	}
	amount := decimal.NewFromInt(price).
		Mul(decimal.NewFromInt(percentage)).
		Div(decimal.NewFromInt(100))
	return amount.Round(0).IntPart()
}
