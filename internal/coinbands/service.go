package coinbands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/pkg/db/models"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
)

// BandInput captures one inclusive price range and its coin reward.
type BandInput struct {
	StartRange int64 `json:"startRange"`
	EndRange   int64 `json:"endRange"`
	Coins      int64 `json:"coins"`
}

// Service manages the coin band table used to price order acceptance.
type Service interface {
	Create(ctx context.Context, input BandInput) (*models.CoinBand, error)
	Update(ctx context.Context, id uuid.UUID, input BandInput) (*models.CoinBand, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.CoinBand, error)
	// CoinsFor resolves the reward for a quoted price. An uncovered price
	// costs zero coins rather than failing order creation.
	CoinsFor(ctx context.Context, price int64) (int64, error)
}

type service struct {
	repo Repository
}

// NewService builds a coin band service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coin band repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input BandInput) (*models.CoinBand, error) {
	if err := validateBand(input); err != nil {
		return nil, err
	}
	band := &models.CoinBand{
		StartRange: input.StartRange,
		EndRange:   input.EndRange,
		Coins:      input.Coins,
	}
	if err := s.repo.Create(ctx, band); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating coin band")
	}
	return band, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input BandInput) (*models.CoinBand, error) {
	if err := validateBand(input); err != nil {
		return nil, err
	}
	band, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coin band not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coin band")
	}

	band.StartRange = input.StartRange
	band.EndRange = input.EndRange
	band.Coins = input.Coins
	if err := s.repo.Save(ctx, band); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating coin band")
	}
	return band, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting coin band")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coin band not found")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.CoinBand, error) {
	bands, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing coin bands")
	}
	return bands, nil
}

func (s *service) CoinsFor(ctx context.Context, price int64) (int64, error) {
	band, err := s.repo.FindForPrice(ctx, price)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving coin band")
	}
	return band.Coins, nil
}

func validateBand(input BandInput) error {
	if input.StartRange < 0 || input.EndRange < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "ranges must be non-negative")
	}
	if input.EndRange < input.StartRange {
		return pkgerrors.New(pkgerrors.CodeValidation, "endRange must not be below startRange")
	}
	if input.Coins < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coins must be non-negative")
	}
	return nil
}
