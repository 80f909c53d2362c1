package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/internal/ledger"
	"github.com/bechdu/buyback-backend/pkg/config"
	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
)

type fakeRepository struct {
	payments map[uuid.UUID]*models.Payment
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{payments: map[uuid.UUID]*models.Payment{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = uuid.New()
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakeRepository) List(ctx context.Context, partnerPhone string, offset, limit int) ([]models.Payment, int64, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if partnerPhone == "" || p.PartnerPhone == partnerPhone {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) MarkStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) (int64, error) {
	payment, ok := f.payments[id]
	if !ok || payment.Status != enums.PaymentStatusPending {
		return 0, nil
	}
	payment.Status = status
	return 1, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeLedger struct {
	credits []ledger.EntryInput
}

func (f *fakeLedger) Credit(ctx context.Context, tx *gorm.DB, input ledger.EntryInput) (*models.CoinTransaction, error) {
	f.credits = append(f.credits, input)
	return &models.CoinTransaction{}, nil
}

func (f *fakeLedger) Debit(ctx context.Context, tx *gorm.DB, input ledger.EntryInput) (*models.CoinTransaction, error) {
	return nil, nil
}

func (f *fakeLedger) Balance(ctx context.Context, partnerPhone string) (int64, error) {
	return 0, nil
}

func (f *fakeLedger) ListTransactions(ctx context.Context, input ledger.ListTransactionsInput) ([]models.CoinTransaction, int64, error) {
	return nil, 0, nil
}

func (f *fakeLedger) GetTransaction(ctx context.Context, id uuid.UUID, requesterPhone string) (*models.CoinTransaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, repo Repository, fl *fakeLedger) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Tx:      fakeTxRunner{},
		Ledger:  fl,
		Company: config.CompanyConfig{State: "Karnataka"},
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_SubmitComputesGST(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, &fakeLedger{})

	payment, err := svc.Submit(context.Background(), SubmitInput{
		PartnerPhone:  "9876543210",
		PartnerName:   "Ravi Traders",
		PartnerState:  "Maharashtra",
		Coins:         500,
		Price:         1000,
		GSTPercentage: 18,
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if payment.GSTPrice != 180 {
		t.Fatalf("gst = %d, want 180", payment.GSTPrice)
	}
	if payment.HomeState != "Karnataka" {
		t.Fatalf("home state = %q", payment.HomeState)
	}
	if payment.Message != "Bank Transfer" || payment.Status != enums.PaymentStatusPending {
		t.Fatalf("unexpected payment: %+v", payment)
	}
}

func TestService_ApproveCreditsOnce(t *testing.T) {
	repo := newFakeRepository()
	fl := &fakeLedger{}
	svc := newTestService(t, repo, fl)

	payment, err := svc.Submit(context.Background(), SubmitInput{
		PartnerPhone:  "9876543210",
		Coins:         500,
		Price:         1000,
		GSTPercentage: 18,
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	approved, err := svc.Approve(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if approved.Status != enums.PaymentStatusApproved {
		t.Fatalf("status = %q", approved.Status)
	}
	if len(fl.credits) != 1 {
		t.Fatalf("expected one ledger credit, got %d", len(fl.credits))
	}
	credit := fl.credits[0]
	if credit.Coins != 500 || credit.Message != "Bank Transfer" {
		t.Fatalf("unexpected credit: %+v", credit)
	}
	if credit.PaymentID == nil || *credit.PaymentID != payment.ID {
		t.Fatal("credit must link back to the payment")
	}

	// Second approve must not re-credit.
	_, err = svc.Approve(context.Background(), payment.ID)
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if len(fl.credits) != 1 {
		t.Fatal("double approve must not credit twice")
	}
}

func TestService_RejectThenApproveBlocked(t *testing.T) {
	repo := newFakeRepository()
	fl := &fakeLedger{}
	svc := newTestService(t, repo, fl)

	payment, err := svc.Submit(context.Background(), SubmitInput{
		PartnerPhone: "9876543210",
		Coins:        100,
		Price:        200,
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	rejected, err := svc.Reject(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("Reject error: %v", err)
	}
	if rejected.Status != enums.PaymentStatusRejected {
		t.Fatalf("status = %q", rejected.Status)
	}

	if _, err := svc.Approve(context.Background(), payment.ID); err == nil {
		t.Fatal("approving a rejected payment must fail")
	}
	if len(fl.credits) != 0 {
		t.Fatal("rejected payment must never credit")
	}
}

func TestGSTAmountRounding(t *testing.T) {
	tests := []struct {
		price, pct, want int64
	}{
		{price: 1000, pct: 18, want: 180},
		{price: 999, pct: 18, want: 180},  // 179.82 rounds up
		{price: 997, pct: 18, want: 179},  // 179.46 rounds down
		{price: 1000, pct: 0, want: 0},
	}
	for _, tc := range tests {
		if got := gstAmount(tc.price, tc.pct); got != tc.want {
			t.Fatalf("gstAmount(%d, %d) = %d, want %d", tc.price, tc.pct, got, tc.want)
		}
	}
}
