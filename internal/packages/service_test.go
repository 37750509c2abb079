package packages

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/creditledger-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/creditledger-backend/pkg/errors"
)

type stubRepo struct {
	listFn func(ctx context.Context) ([]models.CreditPackage, error)
	findFn func(ctx context.Context, id string) (*models.CreditPackage, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) ListActive(ctx context.Context) ([]models.CreditPackage, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}
func (s *stubRepo) FindByID(ctx context.Context, id string) (*models.CreditPackage, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, nil
}

func TestListComputesUnitPrice(t *testing.T) {
	repo := &stubRepo{
		listFn: func(ctx context.Context) ([]models.CreditPackage, error) {
			return []models.CreditPackage{
				{ID: "standard", Credits: 5000, BonusCredits: 250, PriceCents: 3999},
				{ID: "broken", Credits: 0, BonusCredits: 0, PriceCents: 999},
			}, nil
		},
	}
	svc, _ := NewService(repo)

	out, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(out))
	}

	want := decimal.NewFromInt(3999).Div(decimal.NewFromInt(5250)).Round(4)
	if !out[0].UnitPriceCents.Equal(want) {
		t.Fatalf("expected unit price %s, got %s", want, out[0].UnitPriceCents)
	}
	if !out[1].UnitPriceCents.Equal(decimal.Zero) {
		t.Fatalf("zero-credit package should price at zero, got %s", out[1].UnitPriceCents)
	}
}

func TestListWrapsRepoFailure(t *testing.T) {
	repo := &stubRepo{
		listFn: func(ctx context.Context) ([]models.CreditPackage, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc, _ := NewService(repo)

	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected error from repository")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestFindRequiresID(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	if _, err := svc.Find(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty id")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFindUnknownPackage(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	if _, err := svc.Find(context.Background(), "ghost"); err == nil {
		t.Fatal("expected error for unknown package")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
