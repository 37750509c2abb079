package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/creditledger-backend/api/responses"
	packagesvc "github.com/angelmondragon/creditledger-backend/internal/packages"
	pkgerrors "github.com/angelmondragon/creditledger-backend/pkg/errors"
	"github.com/angelmondragon/creditledger-backend/pkg/logger"
)

type PackagesService interface {
	List(ctx context.Context) ([]packagesvc.Package, error)
}

type packageResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Credits        int64           `json:"credits"`
	BonusCredits   int64           `json:"bonus_credits"`
	PriceCents     int64           `json:"price_cents"`
	Currency       string          `json:"currency"`
	UnitPriceCents decimal.Decimal `json:"unit_price_cents"`
}

// ListPackages returns the purchasable credit bundles, cheapest first.
func ListPackages(svc PackagesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "packages service unavailable"))
			return
		}

		items, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payload := make([]packageResponse, len(items))
		for i, item := range items {
			payload[i] = packageResponse{
				ID:             item.ID,
				Name:           item.Name,
				Credits:        item.Credits,
				BonusCredits:   item.BonusCredits,
				PriceCents:     item.PriceCents,
				Currency:       item.Currency,
				UnitPriceCents: item.UnitPriceCents,
			}
		}
		responses.WriteSuccess(w, map[string]any{"packages": payload})
	}
}
