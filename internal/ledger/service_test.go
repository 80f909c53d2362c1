package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/pagination"
)

type fakeRepository struct {
	creditFn func(ctx context.Context, phone string, coins int64) (int64, error)
	debitFn  func(ctx context.Context, phone string, coins int64) (int64, error)
	existsFn func(ctx context.Context, phone string) (bool, error)
	createFn func(ctx context.Context, entry *models.CoinTransaction) error
	findFn   func(ctx context.Context, id uuid.UUID) (*models.CoinTransaction, error)
	listFn   func(ctx context.Context, phone string, kind *enums.TransactionType, offset, limit int) ([]models.CoinTransaction, int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) CreditBalance(ctx context.Context, phone string, coins int64) (int64, error) {
	if f.creditFn != nil {
		return f.creditFn(ctx, phone, coins)
	}
	return 1, nil
}

func (f *fakeRepository) DebitBalance(ctx context.Context, phone string, coins int64) (int64, error) {
	if f.debitFn != nil {
		return f.debitFn(ctx, phone, coins)
	}
	return 1, nil
}

func (f *fakeRepository) PartnerExists(ctx context.Context, phone string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, phone)
	}
	return true, nil
}

func (f *fakeRepository) Balance(ctx context.Context, phone string) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) CreateTransaction(ctx context.Context, entry *models.CoinTransaction) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) FindTransaction(ctx context.Context, id uuid.UUID) (*models.CoinTransaction, error) {
	if f.findFn != nil {
		return f.findFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListByPartner(ctx context.Context, phone string, kind *enums.TransactionType, offset, limit int) ([]models.CoinTransaction, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, phone, kind, offset, limit)
	}
	return nil, 0, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Tx: fakeTxRunner{}})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_CreditRecordsEntry(t *testing.T) {
	repo := &fakeRepository{}
	var created *models.CoinTransaction
	repo.createFn = func(ctx context.Context, entry *models.CoinTransaction) error {
		created = entry
		return nil
	}

	svc := newTestService(t, repo)

	entry, err := svc.Credit(context.Background(), nil, EntryInput{
		PartnerPhone: "9876543210",
		Coins:        50,
		Message:      "manual top-up",
	})
	if err != nil {
		t.Fatalf("Credit error: %v", err)
	}
	if created == nil {
		t.Fatal("expected a ledger entry to be written")
	}
	if created.Type != enums.TransactionTypeCredited || created.Coins != 50 {
		t.Fatalf("unexpected entry: %+v", created)
	}
	if entry != created {
		t.Fatal("service should return the created entry")
	}
}

func TestService_CreditUnknownPartner(t *testing.T) {
	repo := &fakeRepository{
		creditFn: func(ctx context.Context, phone string, coins int64) (int64, error) {
			return 0, nil
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Credit(context.Background(), nil, EntryInput{
		PartnerPhone: "9876543210",
		Coins:        50,
		Message:      "manual top-up",
	})
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestService_DebitInsufficientBalance(t *testing.T) {
	repo := &fakeRepository{
		debitFn: func(ctx context.Context, phone string, coins int64) (int64, error) {
			return 0, nil
		},
	}
	var wrote bool
	repo.createFn = func(ctx context.Context, entry *models.CoinTransaction) error {
		wrote = true
		return nil
	}
	svc := newTestService(t, repo)

	_, err := svc.Debit(context.Background(), nil, EntryInput{
		PartnerPhone: "9876543210",
		Coins:        120,
		Message:      "order accepted",
	})
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeInsufficientBalance {
		t.Fatalf("expected INSUFFICIENT_BALANCE, got %v", err)
	}
	if wrote {
		t.Fatal("a failed debit must not write a ledger entry")
	}
}

func TestService_DebitMissingPartner(t *testing.T) {
	repo := &fakeRepository{
		debitFn: func(ctx context.Context, phone string, coins int64) (int64, error) {
			return 0, nil
		},
		existsFn: func(ctx context.Context, phone string) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Debit(context.Background(), nil, EntryInput{
		PartnerPhone: "0000000000",
		Coins:        10,
		Message:      "order accepted",
	})
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestService_EntryValidation(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})

	tests := []struct {
		name  string
		input EntryInput
	}{
		{name: "missing phone", input: EntryInput{Coins: 10, Message: "x"}},
		{name: "zero coins", input: EntryInput{PartnerPhone: "9876543210", Message: "x"}},
		{name: "negative coins", input: EntryInput{PartnerPhone: "9876543210", Coins: -5, Message: "x"}},
		{name: "missing message", input: EntryInput{PartnerPhone: "9876543210", Coins: 10}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Debit(context.Background(), nil, tc.input); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
			if _, err := svc.Credit(context.Background(), nil, tc.input); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestService_ListTransactionsPassesFilter(t *testing.T) {
	kind := enums.TransactionTypeDebited
	repo := &fakeRepository{
		listFn: func(ctx context.Context, phone string, got *enums.TransactionType, offset, limit int) ([]models.CoinTransaction, int64, error) {
			if phone != "9876543210" {
				t.Fatalf("unexpected phone %q", phone)
			}
			if got == nil || *got != kind {
				t.Fatalf("unexpected kind filter %v", got)
			}
			if offset != 10 || limit != 10 {
				t.Fatalf("unexpected window offset=%d limit=%d", offset, limit)
			}
			return []models.CoinTransaction{{Coins: 5}}, 21, nil
		},
	}
	svc := newTestService(t, repo)

	entries, total, err := svc.ListTransactions(context.Background(), ListTransactionsInput{
		PartnerPhone: "9876543210",
		Kind:         &kind,
		Page:         pagination.Params{Page: 2, PageSize: 10},
	})
	if err != nil {
		t.Fatalf("ListTransactions error: %v", err)
	}
	if len(entries) != 1 || total != 21 {
		t.Fatalf("unexpected result: %d entries, total %d", len(entries), total)
	}
}

func TestService_DebitRepoError(t *testing.T) {
	expectedErr := errors.New("boom")
	repo := &fakeRepository{
		debitFn: func(ctx context.Context, phone string, coins int64) (int64, error) {
			return 0, expectedErr
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Debit(context.Background(), nil, EntryInput{
		PartnerPhone: "9876543210",
		Coins:        10,
		Message:      "order accepted",
	})
	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
}

func TestService_GetTransactionOwnership(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepository{
		findFn: func(ctx context.Context, got uuid.UUID) (*models.CoinTransaction, error) {
			if got != id {
				t.Fatalf("unexpected id %s", got)
			}
			return &models.CoinTransaction{ID: id, PartnerPhone: "9876543210", Coins: 40}, nil
		},
	}
	svc := newTestService(t, repo)

	entry, err := svc.GetTransaction(context.Background(), id, "9876543210")
	if err != nil {
		t.Fatalf("GetTransaction error: %v", err)
	}
	if entry.Coins != 40 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	// Admin lookups pass an empty phone and skip the ownership check.
	if _, err := svc.GetTransaction(context.Background(), id, ""); err != nil {
		t.Fatalf("admin GetTransaction error: %v", err)
	}

	_, err = svc.GetTransaction(context.Background(), id, "1112223334")
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestService_GetTransactionMissing(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo)

	_, err := svc.GetTransaction(context.Background(), uuid.New(), "")
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
