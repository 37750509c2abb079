package packages

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/creditledger-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/creditledger-backend/pkg/errors"
)

// Package is the catalog view of a purchasable credit bundle.
type Package struct {
	models.CreditPackage
	// UnitPriceCents is the effective price per credit including bonus
	// credits, rounded to 4 decimal places for display.
	UnitPriceCents decimal.Decimal `json:"unit_price_cents"`
}

// Service exposes read access over the package catalog.
type Service interface {
	List(ctx context.Context) ([]Package, error)
	Find(ctx context.Context, id string) (*models.CreditPackage, error)
}

type service struct {
	repo Repository
}

// NewService wires a package catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("packages repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]Package, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list packages")
	}
	out := make([]Package, len(rows))
	for i, row := range rows {
		out[i] = Package{
			CreditPackage:  row,
			UnitPriceCents: unitPriceCents(row),
		}
	}
	return out, nil
}

func (s *service) Find(ctx context.Context, id string) (*models.CreditPackage, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package id is required")
	}
	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find package")
	}
	if pkg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
	}
	return pkg, nil
}

func unitPriceCents(pkg models.CreditPackage) decimal.Decimal {
	credits := pkg.Credits + pkg.BonusCredits
	if credits <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(pkg.PriceCents).
		Div(decimal.NewFromInt(credits)).
		Round(4)
}
