package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EntryInput captures one balance mutation. Coins must be positive; the
// direction comes from the method, not the sign.
type EntryInput struct {
	PartnerPhone string
	Coins        int64
	Message      string

	// Optional payment linkage recorded on bank-transfer credits.
	OrderID       string
	Price         *int64
	GSTPrice      *int64
	GSTPercentage *int64
	PartnerState  string
	HomeState     string
	Image         string
	PaymentID     *uuid.UUID
}

// ListTransactionsInput filters a partner statement.
type ListTransactionsInput struct {
	PartnerPhone string
	Kind         *enums.TransactionType
	Page         pagination.Params
}

// Service mutates partner balances, pairing every mutation with exactly one
// ledger entry in the same transaction.
type Service interface {
	// Credit adds coins. When tx is non-nil the mutation joins that
	// transaction; otherwise the service opens its own.
	Credit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.CoinTransaction, error)
	// Debit subtracts coins, failing without any write when the balance
	// does not cover the amount.
	Debit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.CoinTransaction, error)
	Balance(ctx context.Context, partnerPhone string) (int64, error)
	// GetTransaction loads a single ledger entry. A non-empty requesterPhone
	// restricts the lookup to that partner's own entries.
	GetTransaction(ctx context.Context, id uuid.UUID, requesterPhone string) (*models.CoinTransaction, error)
	ListTransactions(ctx context.Context, input ListTransactionsInput) ([]models.CoinTransaction, int64, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// ServiceParams groups dependencies for the ledger service.
type ServiceParams struct {
	Repo Repository
	Tx   txRunner
}

// NewService builds a ledger service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Tx == nil {
		return nil, errors.New("tx runner is required")
	}
	return &service{repo: params.Repo, tx: params.Tx}, nil
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.CoinTransaction, error) {
	if err := validateEntry(input); err != nil {
		return nil, err
	}
	if tx != nil {
		return s.credit(ctx, s.repo.WithTx(tx), input)
	}

	var entry *models.CoinTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.credit(ctx, s.repo.WithTx(tx), input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) credit(ctx context.Context, repo Repository, input EntryInput) (*models.CoinTransaction, error) {
	affected, err := repo.CreditBalance(ctx, input.PartnerPhone, input.Coins)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crediting partner balance")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
	}
	return s.appendEntry(ctx, repo, enums.TransactionTypeCredited, input)
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.CoinTransaction, error) {
	if err := validateEntry(input); err != nil {
		return nil, err
	}
	if tx != nil {
		return s.debit(ctx, s.repo.WithTx(tx), input)
	}

	var entry *models.CoinTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.debit(ctx, s.repo.WithTx(tx), input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) debit(ctx context.Context, repo Repository, input EntryInput) (*models.CoinTransaction, error) {
	affected, err := repo.DebitBalance(ctx, input.PartnerPhone, input.Coins)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting partner balance")
	}
	if affected == 0 {
		// Disambiguate a missing partner from an underfunded one.
		exists, err := repo.PartnerExists(ctx, input.PartnerPhone)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking partner")
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
		}
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient coin balance").
			WithDetails(map[string]any{"required": input.Coins})
	}
	return s.appendEntry(ctx, repo, enums.TransactionTypeDebited, input)
}

func (s *service) appendEntry(ctx context.Context, repo Repository, kind enums.TransactionType, input EntryInput) (*models.CoinTransaction, error) {
	entry := &models.CoinTransaction{
		PartnerPhone:  input.PartnerPhone,
		Type:          kind,
		Coins:         input.Coins,
		Message:       input.Message,
		OrderID:       input.OrderID,
		Price:         input.Price,
		GSTPrice:      input.GSTPrice,
		GSTPercentage: input.GSTPercentage,
		PartnerState:  input.PartnerState,
		HomeState:     input.HomeState,
		Image:         input.Image,
		PaymentID:     input.PaymentID,
	}
	if err := repo.CreateTransaction(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording coin transaction")
	}
	return entry, nil
}

func (s *service) Balance(ctx context.Context, partnerPhone string) (int64, error) {
	if partnerPhone == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "partner phone is required")
	}
	balance, err := s.repo.Balance(ctx, partnerPhone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading partner balance")
	}
	return balance, nil
}

func (s *service) GetTransaction(ctx context.Context, id uuid.UUID, requesterPhone string) (*models.CoinTransaction, error) {
	entry, err := s.repo.FindTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading coin transaction")
	}
	if requesterPhone != "" && entry.PartnerPhone != requesterPhone {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "")
	}
	return entry, nil
}

func (s *service) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]models.CoinTransaction, int64, error) {
	if input.PartnerPhone == "" {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "partner phone is required")
	}
	if input.Kind != nil && !input.Kind.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}

	page := input.Page.Normalize()
	entries, total, err := s.repo.ListByPartner(ctx, input.PartnerPhone, input.Kind, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing coin transactions")
	}
	return entries, total, nil
}

func validateEntry(input EntryInput) error {
	if input.PartnerPhone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "partner phone is required")
	}
	if input.Coins <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coins must be positive")
	}
	if input.Message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	return nil
}
