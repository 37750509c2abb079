package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/creditledger-backend/api/responses"
	ledgersvc "github.com/angelmondragon/creditledger-backend/internal/ledger"
	"github.com/angelmondragon/creditledger-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/creditledger-backend/pkg/errors"
	"github.com/angelmondragon/creditledger-backend/pkg/logger"
)

// LedgerService is the controller-facing slice of the ledger.
type LedgerService interface {
	Apply(ctx context.Context, input ledgersvc.ApplyInput) (*ledgersvc.ApplyResult, error)
	GetBalance(ctx context.Context, accountID string) (*models.CreditBalance, error)
	ListHistory(ctx context.Context, params ledgersvc.HistoryParams) (*ledgersvc.HistoryPage, error)
}

type balanceResponse struct {
	AccountID      string    `json:"account_id"`
	Balance        int64     `json:"balance"`
	TotalPurchased int64     `json:"total_purchased"`
	TotalSpent     int64     `json:"total_spent"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func GetBalance(svc LedgerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		accountID := chi.URLParam(r, "accountId")
		balance, err := svc.GetBalance(ctx, accountID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, toBalanceResponse(balance))
	}
}

func toBalanceResponse(b *models.CreditBalance) balanceResponse {
	return balanceResponse{
		AccountID:      b.AccountID,
		Balance:        b.Balance,
		TotalPurchased: b.TotalPurchased,
		TotalSpent:     b.TotalSpent,
		UpdatedAt:      b.UpdatedAt.UTC(),
	}
}
