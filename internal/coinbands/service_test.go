package coinbands

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bechdu/buyback-backend/pkg/db/models"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
)

type fakeRepository struct {
	bands []models.CoinBand
}

func (f *fakeRepository) Create(ctx context.Context, band *models.CoinBand) error {
	band.ID = uuid.New()
	f.bands = append(f.bands, *band)
	return nil
}

func (f *fakeRepository) Save(ctx context.Context, band *models.CoinBand) error {
	for i := range f.bands {
		if f.bands[i].ID == band.ID {
			f.bands[i] = *band
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	for i := range f.bands {
		if f.bands[i].ID == id {
			f.bands = append(f.bands[:i], f.bands[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CoinBand, error) {
	for i := range f.bands {
		if f.bands[i].ID == id {
			band := f.bands[i]
			return &band, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context) ([]models.CoinBand, error) {
	return f.bands, nil
}

func (f *fakeRepository) FindForPrice(ctx context.Context, price int64) (*models.CoinBand, error) {
	for i := range f.bands {
		if f.bands[i].StartRange <= price && price <= f.bands[i].EndRange {
			band := f.bands[i]
			return &band, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_CoinsFor(t *testing.T) {
	repo := &fakeRepository{bands: []models.CoinBand{
		{ID: uuid.New(), StartRange: 0, EndRange: 9999, Coins: 10},
		{ID: uuid.New(), StartRange: 10000, EndRange: 24999, Coins: 25},
	}}
	svc := newTestService(t, repo)

	tests := []struct {
		price int64
		want  int64
	}{
		{price: 0, want: 10},
		{price: 9999, want: 10},
		{price: 10000, want: 25},
		{price: 24999, want: 25},
		// Outside every band: order still creates, at zero coins.
		{price: 25000, want: 0},
	}
	for _, tc := range tests {
		got, err := svc.CoinsFor(context.Background(), tc.price)
		if err != nil {
			t.Fatalf("CoinsFor(%d) error: %v", tc.price, err)
		}
		if got != tc.want {
			t.Fatalf("CoinsFor(%d) = %d, want %d", tc.price, got, tc.want)
		}
	}
}

func TestService_BandValidation(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})

	tests := []struct {
		name  string
		input BandInput
	}{
		{name: "inverted range", input: BandInput{StartRange: 100, EndRange: 50, Coins: 5}},
		{name: "negative start", input: BandInput{StartRange: -1, EndRange: 50, Coins: 5}},
		{name: "negative coins", input: BandInput{StartRange: 0, EndRange: 50, Coins: -5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestService_UpdateMissingBand(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})

	_, err := svc.Update(context.Background(), uuid.New(), BandInput{EndRange: 10})
	if got := pkgerrors.As(err); got == nil || got.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
