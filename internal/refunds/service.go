package refunds

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/pkg/db/models"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/pagination"
)

// RecordInput notes coins owed back to a partner after an assigned order was
// taken away from it.
type RecordInput struct {
	OrderID            string
	CancellationReason string
	PartnerPhone       string
	PartnerName        string
	Coins              int64
}

// Service is the refund sink. Records are written for back-office
// reconciliation and never credit the ledger on their own.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) error
	List(ctx context.Context, page pagination.Params) ([]models.Refund, int64, error)
}

type service struct {
	repo Repository
}

// NewService builds a refund service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("refund repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) error {
	if input.OrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.PartnerPhone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "partner phone is required")
	}
	if input.Coins <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coins must be positive")
	}

	refund := &models.Refund{
		OrderID:            input.OrderID,
		CancellationReason: input.CancellationReason,
		PartnerPhone:       input.PartnerPhone,
		PartnerName:        input.PartnerName,
		Coins:              input.Coins,
	}
	if err := s.repo.WithTx(tx).Create(ctx, refund); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording refund")
	}
	return nil
}

func (s *service) List(ctx context.Context, page pagination.Params) ([]models.Refund, int64, error) {
	page = page.Normalize()
	refunds, total, err := s.repo.List(ctx, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing refunds")
	}
	return refunds, total, nil
}
