package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/internal/ledger"
	"github.com/bechdu/buyback-backend/internal/refunds"
	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/pagination"
)

type fakeRepository struct {
	seq    int64
	orders map[string]*models.Order
	saves  int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{orders: map[string]*models.Order{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) NextOrderSeq(ctx context.Context) (int64, error) {
	f.seq++
	return f.seq, nil
}

func (f *fakeRepository) Create(ctx context.Context, order *models.Order) error {
	f.orders[order.OrderID] = order
	return nil
}

func (f *fakeRepository) Save(ctx context.Context, order *models.Order) error {
	f.orders[order.OrderID] = order
	f.saves++
	return nil
}

func (f *fakeRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeRepository) FindByOrderIDLocked(ctx context.Context, orderID string) (*models.Order, error) {
	return f.FindByOrderID(ctx, orderID)
}

func (f *fakeRepository) List(ctx context.Context, filter ListFilter, offset, limit int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepository) ListEligible(ctx context.Context, pincodes []string, offset, limit int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepository) ListAssignedToPartner(ctx context.Context, partnerPhone string, offset, limit int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepository) ListDelegatedToPickup(ctx context.Context, pickupPhone string, offset, limit int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepository) ListByUserPhone(ctx context.Context, phone string) ([]models.Order, error) {
	return nil, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// fakeLedger tracks balances in memory and refuses overdrafts the way the
// real service does.
type fakeLedger struct {
	balances map[string]int64
	entries  []ledger.EntryInput
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: map[string]int64{}}
}

func (f *fakeLedger) Credit(ctx context.Context, tx *gorm.DB, input ledger.EntryInput) (*models.CoinTransaction, error) {
	f.balances[input.PartnerPhone] += input.Coins
	f.entries = append(f.entries, input)
	return &models.CoinTransaction{}, nil
}

func (f *fakeLedger) Debit(ctx context.Context, tx *gorm.DB, input ledger.EntryInput) (*models.CoinTransaction, error) {
	if f.balances[input.PartnerPhone] < input.Coins {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient coin balance")
	}
	f.balances[input.PartnerPhone] -= input.Coins
	f.entries = append(f.entries, input)
	return &models.CoinTransaction{}, nil
}

func (f *fakeLedger) Balance(ctx context.Context, partnerPhone string) (int64, error) {
	return f.balances[partnerPhone], nil
}

func (f *fakeLedger) ListTransactions(ctx context.Context, input ledger.ListTransactionsInput) ([]models.CoinTransaction, int64, error) {
	return nil, 0, nil
}

func (f *fakeLedger) GetTransaction(ctx context.Context, id uuid.UUID, requesterPhone string) (*models.CoinTransaction, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeRefunds struct {
	records []refunds.RecordInput
}

func (f *fakeRefunds) Record(ctx context.Context, tx *gorm.DB, input refunds.RecordInput) error {
	f.records = append(f.records, input)
	return nil
}

func (f *fakeRefunds) List(ctx context.Context, page pagination.Params) ([]models.Refund, int64, error) {
	return nil, 0, nil
}

type fakeBands struct {
	coins int64
}

func (f *fakeBands) CoinsFor(ctx context.Context, price int64) (int64, error) {
	return f.coins, nil
}

type fixture struct {
	repo    *fakeRepository
	ledger  *fakeLedger
	refunds *fakeRefunds
	svc     Service
}

func newFixture(t *testing.T, coins int64) *fixture {
	t.Helper()
	repo := newFakeRepository()
	fl := newFakeLedger()
	fr := &fakeRefunds{}
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Tx:      fakeTxRunner{},
		Ledger:  fl,
		Refunds: fr,
		Bands:   &fakeBands{coins: coins},
		Now:     func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return &fixture{repo: repo, ledger: fl, refunds: fr, svc: svc}
}

func createOrderInput(price int64) CreateOrderInput {
	var input CreateOrderInput
	input.User.Name = "Asha"
	input.User.Phone = "9000000001"
	input.User.Address = "12 MG Road, Pune 411001"
	input.Product.Name = "Pixel 7 Pro"
	input.Product.Price = price
	input.PickUp.Date = "2025-06-03"
	input.PickUp.Time = "10:00-12:00"
	return input
}

func (fx *fixture) createAccepted(t *testing.T, partnerPhone string, balance int64) *models.Order {
	t.Helper()
	fx.ledger.balances[partnerPhone] = balance
	order, err := fx.svc.Create(context.Background(), createOrderInput(15000))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	order, err = fx.svc.Accept(context.Background(), AcceptOrderInput{
		OrderID:      order.OrderID,
		PartnerPhone: partnerPhone,
		PartnerName:  "Ravi Traders",
	})
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	return order
}

func TestService_Create(t *testing.T) {
	fx := newFixture(t, 100)

	order, err := fx.svc.Create(context.Background(), createOrderInput(15000))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if order.OrderID != "BECHDU1" {
		t.Fatalf("unexpected order id %q", order.OrderID)
	}
	if order.Coins != 100 {
		t.Fatalf("coins = %d, want 100", order.Coins)
	}
	if order.Status != enums.OrderStatusNew {
		t.Fatalf("status = %q, want new", order.Status)
	}
	if order.User.OrderPincode != "411001" {
		t.Fatalf("derived pincode = %q, want 411001", order.User.OrderPincode)
	}
	if order.Product.Slug != "pixel-7-pro" {
		t.Fatalf("slug = %q", order.Product.Slug)
	}
	if len(order.Logs) != 1 || order.Logs[0].Message != "Order created" {
		t.Fatalf("unexpected logs: %+v", order.Logs)
	}

	second, err := fx.svc.Create(context.Background(), createOrderInput(15000))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if second.OrderID != "BECHDU2" {
		t.Fatalf("order ids must be strictly increasing, got %q", second.OrderID)
	}
}

func TestService_CreateWithoutPincodeInAddress(t *testing.T) {
	fx := newFixture(t, 0)

	input := createOrderInput(5000)
	input.User.Address = "12 MG Road, Pune"
	order, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if order.User.OrderPincode != "" {
		t.Fatalf("expected empty derived pincode, got %q", order.User.OrderPincode)
	}
}

func TestService_AcceptDebitsPartner(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	if order.Status != enums.OrderStatusProcessing {
		t.Fatalf("status = %q, want processing", order.Status)
	}
	if order.Partner.PartnerPhone != "9876543210" {
		t.Fatalf("partner not set: %+v", order.Partner)
	}
	if got := fx.ledger.balances["9876543210"]; got != 0 {
		t.Fatalf("balance = %d, want 0", got)
	}
	if order.Logs[0].Message != "Order accepted by partner Ravi Traders (9876543210), 100 coins debited" {
		t.Fatalf("unexpected log: %q", order.Logs[0].Message)
	}
}

func TestService_AcceptInsufficientBalance(t *testing.T) {
	fx := newFixture(t, 100)
	fx.ledger.balances["9876543210"] = 30

	order, err := fx.svc.Create(context.Background(), createOrderInput(15000))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	_, err = fx.svc.Accept(context.Background(), AcceptOrderInput{
		OrderID:      order.OrderID,
		PartnerPhone: "9876543210",
		PartnerName:  "Ravi Traders",
	})
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeInsufficientBalance {
		t.Fatalf("expected INSUFFICIENT_BALANCE, got %v", err)
	}

	stored := fx.repo.orders[order.OrderID]
	if stored.Status != enums.OrderStatusNew || stored.Partner.PartnerPhone != "" {
		t.Fatalf("order must stay new and unassigned: %+v", stored)
	}
	if len(fx.ledger.entries) != 0 {
		t.Fatal("no ledger entry may exist after a failed accept")
	}
}

func TestService_AcceptAlreadyAssigned(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	fx.ledger.balances["9123456780"] = 500
	_, err := fx.svc.Accept(context.Background(), AcceptOrderInput{
		OrderID:      order.OrderID,
		PartnerPhone: "9123456780",
		PartnerName:  "Other",
	})
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if fx.ledger.balances["9123456780"] != 500 {
		t.Fatal("losing partner must not be debited")
	}
}

func TestService_UnassignRecordsRefund(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	order, err := fx.svc.Unassign(context.Background(), order.OrderID, "partner unavailable")
	if err != nil {
		t.Fatalf("Unassign error: %v", err)
	}
	if order.Status != enums.OrderStatusNew {
		t.Fatalf("status = %q, want new", order.Status)
	}
	if order.Partner.PartnerPhone != "" || order.Partner.PartnerName != "" {
		t.Fatalf("partner fields must be cleared: %+v", order.Partner)
	}
	if len(fx.refunds.records) != 1 || fx.refunds.records[0].Coins != 100 {
		t.Fatalf("expected one refund record of 100 coins: %+v", fx.refunds.records)
	}
	// The ledger is only reconciled externally.
	if fx.ledger.balances["9876543210"] != 0 {
		t.Fatal("unassign must not auto-credit the ledger")
	}
}

func TestService_CancelIdempotent(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	first, err := fx.svc.Cancel(context.Background(), CancelInput{
		OrderID:   order.OrderID,
		Reason:    "customer changed mind",
		ActorRole: enums.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if first.Status != enums.OrderStatusCancelled || first.CancellationReason != "customer changed mind" {
		t.Fatalf("unexpected order after cancel: %+v", first)
	}
	if len(fx.refunds.records) != 1 {
		t.Fatalf("expected one refund record, got %d", len(fx.refunds.records))
	}

	second, err := fx.svc.Cancel(context.Background(), CancelInput{
		OrderID:   order.OrderID,
		Reason:    "again",
		ActorRole: enums.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("second Cancel error: %v", err)
	}
	if second.CancellationReason != "customer changed mind" {
		t.Fatal("second cancel must not overwrite the reason")
	}
	if len(fx.refunds.records) != 1 {
		t.Fatal("second cancel must not create another refund record")
	}
}

func TestService_CancelCompletedOrder(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	if _, err := fx.svc.Complete(context.Background(), CompleteInput{
		OrderID:    order.OrderID,
		FinalPrice: "14000",
		ActorPhone: "9876543210",
		ActorRole:  enums.RolePartner,
	}); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	_, err := fx.svc.Cancel(context.Background(), CancelInput{
		OrderID:   order.OrderID,
		Reason:    "too late",
		ActorRole: enums.RoleAdmin,
	})
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestService_RequoteByNonAssignee(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	_, err := fx.svc.Requote(context.Background(), RequoteInput{
		OrderID:    order.OrderID,
		NewPrice:   9000,
		ActorPhone: "9123456780",
		ActorRole:  enums.RolePartner,
	})
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if fx.repo.orders[order.OrderID].Product.Price != 15000 {
		t.Fatal("price must be unchanged after rejected requote")
	}
}

func TestService_RequoteRecordsOldAndNewPrice(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	order, err := fx.svc.Requote(context.Background(), RequoteInput{
		OrderID:    order.OrderID,
		NewPrice:   12000,
		ActorPhone: "9876543210",
		ActorRole:  enums.RolePartner,
	})
	if err != nil {
		t.Fatalf("Requote error: %v", err)
	}
	if order.Product.Price != 12000 {
		t.Fatalf("price = %d, want 12000", order.Product.Price)
	}
	if order.Logs[0].Message != "Price requoted from 15000 to 12000" {
		t.Fatalf("unexpected log: %q", order.Logs[0].Message)
	}
}

func TestService_RescheduleCompletedOrderBlocked(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	if _, err := fx.svc.Complete(context.Background(), CompleteInput{
		OrderID:    order.OrderID,
		ActorPhone: "9876543210",
		ActorRole:  enums.RolePartner,
	}); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	_, err := fx.svc.Reschedule(context.Background(), RescheduleInput{
		OrderID:    order.OrderID,
		Date:       "2025-06-05",
		Time:       "14:00-16:00",
		ActorPhone: "9876543210",
		ActorRole:  enums.RolePartner,
	})
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestService_DelegateAndCompleteByPickup(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	order, err := fx.svc.Delegate(context.Background(), DelegateInput{
		OrderID:           order.OrderID,
		PartnerPhone:      "9876543210",
		PickUpPersonName:  "Suresh",
		PickUpPersonPhone: "9876500000",
	})
	if err != nil {
		t.Fatalf("Delegate error: %v", err)
	}
	if order.Status != enums.OrderStatusProcessing {
		t.Fatal("delegation must not change the status")
	}
	if order.Partner.PickUpPersonPhone != "9876500000" {
		t.Fatalf("pickup person not set: %+v", order.Partner)
	}

	// The delegated pickup person may complete the order.
	order, err = fx.svc.Complete(context.Background(), CompleteInput{
		OrderID:      order.OrderID,
		FinalPrice:   "14000",
		IMEINumber:   "350000000000001",
		DeviceImages: []string{"front.jpg", "back.jpg"},
		ActorPhone:   "9876500000",
		ActorRole:    enums.RolePickUp,
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if order.Status != enums.OrderStatusCompleted {
		t.Fatalf("status = %q, want Completed", order.Status)
	}
	if order.Device.FinalPrice != "14000" || len(order.Device.DeviceImages) != 2 {
		t.Fatalf("device info not attached: %+v", order.Device)
	}
}

func TestService_DelegateByWrongPartner(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	_, err := fx.svc.Delegate(context.Background(), DelegateInput{
		OrderID:           order.OrderID,
		PartnerPhone:      "9123456780",
		PickUpPersonName:  "Suresh",
		PickUpPersonPhone: "9876500000",
	})
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestService_LogsOnlyGrow(t *testing.T) {
	fx := newFixture(t, 100)
	order := fx.createAccepted(t, "9876543210", 100)

	prev := len(order.Logs)
	steps := []func() (*models.Order, error){
		func() (*models.Order, error) {
			return fx.svc.Reschedule(context.Background(), RescheduleInput{
				OrderID: order.OrderID, Date: "2025-06-05", Time: "14:00-16:00",
				ActorPhone: "9876543210", ActorRole: enums.RolePartner,
			})
		},
		func() (*models.Order, error) {
			return fx.svc.Requote(context.Background(), RequoteInput{
				OrderID: order.OrderID, NewPrice: 13000,
				ActorPhone: "9876543210", ActorRole: enums.RolePartner,
			})
		},
		func() (*models.Order, error) {
			return fx.svc.Cancel(context.Background(), CancelInput{
				OrderID: order.OrderID, Reason: "done testing", ActorRole: enums.RoleAdmin,
			})
		},
	}
	for i, step := range steps {
		updated, err := step()
		if err != nil {
			t.Fatalf("step %d error: %v", i, err)
		}
		if len(updated.Logs) != prev+1 {
			t.Fatalf("step %d: log count %d, want %d", i, len(updated.Logs), prev+1)
		}
		prev = len(updated.Logs)
	}
}

func TestService_OrderIDsDistinct(t *testing.T) {
	fx := newFixture(t, 0)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		order, err := fx.svc.Create(context.Background(), createOrderInput(int64(1000+i)))
		if err != nil {
			t.Fatalf("Create error: %v", err)
		}
		if seen[order.OrderID] {
			t.Fatalf("duplicate order id %q", order.OrderID)
		}
		seen[order.OrderID] = true
		if want := fmt.Sprintf("BECHDU%d", i+1); order.OrderID != want {
			t.Fatalf("order id %q, want %q", order.OrderID, want)
		}
	}
}
