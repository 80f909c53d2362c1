package orders

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/internal/ledger"
	"github.com/bechdu/buyback-backend/internal/refunds"
	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/types"
)

// orderIDPrefix tags every generated order id; the numeric tail comes from
// the shared counter.
const orderIDPrefix = "BECHDU"

// orderPincodeRe extracts a trailing 6 digit pincode from a free-text
// address. No match leaves the derived pincode empty.
var orderPincodeRe = regexp.MustCompile(`(\d{6})\s*$`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// coinPricer resolves the coin reward for a quoted price at creation time.
type coinPricer interface {
	CoinsFor(ctx context.Context, price int64) (int64, error)
}

// Service drives the order lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
	ListByUserPhone(ctx context.Context, phone string) ([]models.Order, error)

	// Accept assigns the order to a partner, debiting the partner's coins in
	// the same transaction. Used for both partner self-accept and admin
	// force-assign.
	Accept(ctx context.Context, input AcceptOrderInput) (*models.Order, error)
	// Unassign removes the partner (admin action), reverting the order to
	// new and recording a refund for the debited coins.
	Unassign(ctx context.Context, orderID, reason string) (*models.Order, error)
	Delegate(ctx context.Context, input DelegateInput) (*models.Order, error)
	Undelegate(ctx context.Context, orderID, partnerPhone string) (*models.Order, error)
	Requote(ctx context.Context, input RequoteInput) (*models.Order, error)
	Reschedule(ctx context.Context, input RescheduleInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)
	Complete(ctx context.Context, input CompleteInput) (*models.Order, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	ledger  ledger.Service
	refunds refunds.Service
	bands   coinPricer
	now     func() time.Time
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Ledger  ledger.Service
	Refunds refunds.Service
	Bands   coinPricer
	Now     func() time.Time
}

// NewService builds an order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Refunds == nil {
		return nil, fmt.Errorf("refund service required")
	}
	if params.Bands == nil {
		return nil, fmt.Errorf("coin band service required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		ledger:  params.Ledger,
		refunds: params.Refunds,
		bands:   params.Bands,
		now:     params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.User.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user phone is required")
	}
	if input.Product.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Product.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price must be non-negative")
	}

	coins, err := s.bands.CoinsFor(ctx, input.Product.Price)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		seq, err := repo.NextOrderSeq(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "advancing order counter")
		}

		now := s.now()
		order = &models.Order{
			OrderID: fmt.Sprintf("%s%d", orderIDPrefix, seq),
			User: models.UserSnapshot{
				Name:         input.User.Name,
				Email:        input.User.Email,
				Phone:        input.User.Phone,
				AddPhone:     input.User.AddPhone,
				Address:      input.User.Address,
				Pincode:      input.User.Pincode,
				City:         input.User.City,
				OrderPincode: derivePincode(input.User.Address),
			},
			Payment: models.PaymentInfo{
				Type: input.Payment.Type,
				ID:   input.Payment.ID,
			},
			PickUp: models.PickupSlot{
				Date: input.PickUp.Date,
				Time: input.PickUp.Time,
			},
			Product: models.ProductDetails{
				Name:    input.Product.Name,
				Slug:    slug.Make(input.Product.Name),
				Image:   input.Product.Image,
				Price:   input.Product.Price,
				Options: input.Product.Options,
			},
			Promo: models.PromoInfo{
				Code:  input.Promo.Code,
				Price: input.Promo.Price,
			},
			Coins:    coins,
			Status:   enums.OrderStatusNew,
			Platform: input.Platform,
		}
		if order.Promo.Code == "" {
			order.Promo.Code = "Not Applicable"
		}
		order.Logs = order.Logs.Prepend("Order created", now)

		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	page := filter.Page.Normalize()
	orders, total, err := s.repo.List(ctx, filter, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return orders, total, nil
}

func (s *service) ListByUserPhone(ctx context.Context, phone string) ([]models.Order, error) {
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	orders, err := s.repo.ListByUserPhone(ctx, phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return orders, nil
}

func (s *service) Accept(ctx context.Context, input AcceptOrderInput) (*models.Order, error) {
	if input.OrderID == "" || input.PartnerPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and partner phone are required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		// The row lock serializes competing accepts; the second caller
		// observes the assignment and fails without debiting.
		order, err = s.lockedOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusNew {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is not open for acceptance")
		}
		if order.Partner.PartnerPhone != "" {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already assigned")
		}

		if order.Coins > 0 {
			_, err = s.ledger.Debit(ctx, tx, ledger.EntryInput{
				PartnerPhone: input.PartnerPhone,
				Coins:        order.Coins,
				Message:      fmt.Sprintf("Debited for order %s", order.OrderID),
				OrderID:      order.OrderID,
			})
			if err != nil {
				return err
			}
		}

		order.Partner.PartnerName = input.PartnerName
		order.Partner.PartnerPhone = input.PartnerPhone
		order.Status = enums.OrderStatusProcessing
		order.Logs = order.Logs.Prepend(
			fmt.Sprintf("Order accepted by partner %s (%s), %d coins debited",
				input.PartnerName, input.PartnerPhone, order.Coins),
			s.now(),
		)

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Unassign(ctx context.Context, orderID, reason string) (*models.Order, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = s.lockedOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Partner.PartnerPhone == "" {
			return pkgerrors.New(pkgerrors.CodeConflict, "order has no assigned partner")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already closed")
		}

		if order.Coins > 0 {
			err = s.refunds.Record(ctx, tx, refunds.RecordInput{
				OrderID:            order.OrderID,
				CancellationReason: reason,
				PartnerPhone:       order.Partner.PartnerPhone,
				PartnerName:        order.Partner.PartnerName,
				Coins:              order.Coins,
			})
			if err != nil {
				return err
			}
		}

		removed := order.Partner.PartnerName
		order.Partner = models.PartnerAssignment{}
		order.Status = enums.OrderStatusNew
		order.Logs = order.Logs.Prepend(
			fmt.Sprintf("Partner %s removed from order, %d coins recorded for refund", removed, order.Coins),
			s.now(),
		)

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Delegate(ctx context.Context, input DelegateInput) (*models.Order, error) {
	if input.OrderID == "" || input.PickUpPersonPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and pickup person phone are required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = s.lockedOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Partner.PartnerPhone != input.PartnerPhone {
			return pkgerrors.New(pkgerrors.CodeForbidden, "")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already closed")
		}
		if order.Partner.PickUpPersonPhone != "" {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already delegated")
		}

		order.Partner.PickUpPersonName = input.PickUpPersonName
		order.Partner.PickUpPersonPhone = input.PickUpPersonPhone
		order.Logs = order.Logs.Prepend(
			fmt.Sprintf("Order delegated to pickup person %s (%s)",
				input.PickUpPersonName, input.PickUpPersonPhone),
			s.now(),
		)

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Undelegate(ctx context.Context, orderID, partnerPhone string) (*models.Order, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = s.lockedOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Partner.PartnerPhone != partnerPhone {
			return pkgerrors.New(pkgerrors.CodeForbidden, "")
		}

		removed := order.Partner.PickUpPersonName
		order.Partner.PickUpPersonName = ""
		order.Partner.PickUpPersonPhone = ""
		order.Logs = order.Logs.Prepend(
			fmt.Sprintf("Pickup person %s removed from order", removed),
			s.now(),
		)

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Requote(ctx context.Context, input RequoteInput) (*models.Order, error) {
	if input.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.NewPrice < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = s.lockedOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := requireAssignee(order, input.ActorPhone, input.ActorRole); err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already closed")
		}

		oldPrice := order.Product.Price
		order.Product.Price = input.NewPrice
		if input.Options != nil {
			order.Product.Options = input.Options
		}
		order.Logs = order.Logs.Prepend(
			fmt.Sprintf("Price requoted from %d to %d", oldPrice, input.NewPrice),
			s.now(),
		)

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Reschedule(ctx context.Context, input RescheduleInput) (*models.Order, error) {
	if input.OrderID == "" || input.Date == "" || input.Time == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id, date and time are required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = s.lockedOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := requireAssignee(order, input.ActorPhone, input.ActorRole); err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already closed")
		}

		oldSlot := order.PickUp
		order.PickUp = models.PickupSlot{Date: input.Date, Time: input.Time}
		order.Status = enums.OrderStatusRescheduled
		order.Logs = order.Logs.Prepend(
			fmt.Sprintf("Pickup rescheduled from %s %s to %s %s",
				oldSlot.Date, oldSlot.Time, input.Date, input.Time),
			s.now(),
		)

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = s.lockedOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		// Cancelling twice is a no-op; no second refund record.
		if order.Status == enums.OrderStatusCancelled {
			return nil
		}
		if order.Status == enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already completed")
		}
		if input.ActorPhone != "" {
			if err := requireAssignee(order, input.ActorPhone, input.ActorRole); err != nil {
				return err
			}
		}

		if order.Partner.PartnerPhone != "" && order.Coins > 0 {
			err = s.refunds.Record(ctx, tx, refunds.RecordInput{
				OrderID:            order.OrderID,
				CancellationReason: input.Reason,
				PartnerPhone:       order.Partner.PartnerPhone,
				PartnerName:        order.Partner.PartnerName,
				Coins:              order.Coins,
			})
			if err != nil {
				return err
			}
		}

		order.Status = enums.OrderStatusCancelled
		order.CancellationReason = input.Reason
		order.Logs = order.Logs.Prepend(
			fmt.Sprintf("Order cancelled: %s", input.Reason),
			s.now(),
		)

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Complete(ctx context.Context, input CompleteInput) (*models.Order, error) {
	if input.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = s.lockedOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := requireAssignee(order, input.ActorPhone, input.ActorRole); err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already closed")
		}

		order.Device = models.DeviceInfo{
			FinalPrice:   input.FinalPrice,
			IMEINumber:   input.IMEINumber,
			DeviceBill:   input.DeviceBill,
			IDCard:       input.IDCard,
			DeviceImages: types.StringList(input.DeviceImages),
		}
		order.Status = enums.OrderStatusCompleted
		order.Logs = order.Logs.Prepend("Order completed with device details", s.now())

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) lockedOrder(ctx context.Context, repo Repository, orderID string) (*models.Order, error) {
	order, err := repo.FindByOrderIDLocked(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

// requireAssignee enforces the assignment scope: admins pass, partners must
// hold the order, pickup persons must be its delegate.
func requireAssignee(order *models.Order, actorPhone string, role enums.PrincipalRole) error {
	switch role {
	case enums.RoleAdmin:
		return nil
	case enums.RolePartner:
		if order.Partner.PartnerPhone != "" && order.Partner.PartnerPhone == actorPhone {
			return nil
		}
	case enums.RolePickUp:
		if order.Partner.PickUpPersonPhone != "" && order.Partner.PickUpPersonPhone == actorPhone {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "")
}

func derivePincode(address string) string {
	match := orderPincodeRe.FindStringSubmatch(address)
	if match == nil {
		return ""
	}
	return match[1]
}
