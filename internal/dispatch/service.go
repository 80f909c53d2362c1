package dispatch

import (
	"context"
	"fmt"

	"github.com/bechdu/buyback-backend/internal/directory"
	"github.com/bechdu/buyback-backend/internal/orders"
	"github.com/bechdu/buyback-backend/pkg/db/models"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/pagination"
)

// Service answers who-can-service-what questions: open orders inside a
// partner's service area, a partner's current workload, and the partners
// covering a given order's pincode.
type Service interface {
	EligibleForPartner(ctx context.Context, partnerPhone string, page pagination.Params) ([]models.Order, int64, error)
	AssignedToPartner(ctx context.Context, partnerPhone string, page pagination.Params) ([]models.Order, int64, error)
	DelegatedToPickup(ctx context.Context, pickupPhone string, page pagination.Params) ([]models.Order, int64, error)
	PartnersForOrder(ctx context.Context, orderID string) ([]models.Partner, *models.Order, error)
}

type service struct {
	orders    orders.Repository
	directory directory.Service
	ordersSvc orders.Service
}

// ServiceParams groups dependencies for the dispatch service.
type ServiceParams struct {
	Orders    orders.Repository
	OrdersSvc orders.Service
	Directory directory.Service
}

// NewService builds a dispatch service.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.OrdersSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("directory service required")
	}
	return &service{
		orders:    params.Orders,
		ordersSvc: params.OrdersSvc,
		directory: params.Directory,
	}, nil
}

func (s *service) EligibleForPartner(ctx context.Context, partnerPhone string, page pagination.Params) ([]models.Order, int64, error) {
	partner, err := s.directory.GetPartner(ctx, partnerPhone)
	if err != nil {
		return nil, 0, err
	}
	if len(partner.PinCodes) == 0 {
		return nil, 0, nil
	}

	page = page.Normalize()
	found, total, err := s.orders.ListEligible(ctx, partner.PinCodes, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing eligible orders")
	}
	return found, total, nil
}

func (s *service) AssignedToPartner(ctx context.Context, partnerPhone string, page pagination.Params) ([]models.Order, int64, error) {
	page = page.Normalize()
	found, total, err := s.orders.ListAssignedToPartner(ctx, partnerPhone, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing assigned orders")
	}
	return found, total, nil
}

func (s *service) DelegatedToPickup(ctx context.Context, pickupPhone string, page pagination.Params) ([]models.Order, int64, error) {
	page = page.Normalize()
	found, total, err := s.orders.ListDelegatedToPickup(ctx, pickupPhone, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing delegated orders")
	}
	return found, total, nil
}

func (s *service) PartnersForOrder(ctx context.Context, orderID string) ([]models.Partner, *models.Order, error) {
	order, err := s.ordersSvc.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.User.OrderPincode == "" {
		return nil, order, nil
	}

	partners, err := s.directory.PartnersForPincode(ctx, order.User.OrderPincode)
	if err != nil {
		return nil, nil, err
	}
	return partners, order, nil
}
