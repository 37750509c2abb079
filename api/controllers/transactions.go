package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/creditledger-backend/api/responses"
	"github.com/angelmondragon/creditledger-backend/api/validators"
	ledgersvc "github.com/angelmondragon/creditledger-backend/internal/ledger"
	"github.com/angelmondragon/creditledger-backend/pkg/db/models"
	"github.com/angelmondragon/creditledger-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/creditledger-backend/pkg/errors"
	"github.com/angelmondragon/creditledger-backend/pkg/logger"
)

type applyTransactionRequest struct {
	Amount            int64  `json:"amount" validate:"required,min=1"`
	Description       string `json:"description" validate:"omitempty,max=500"`
	ExternalReference string `json:"external_reference" validate:"omitempty,max=255"`
}

type transactionResponse struct {
	ID                string    `json:"id"`
	AccountID         string    `json:"account_id"`
	SequenceNo        int64     `json:"sequence_no"`
	Type              string    `json:"type"`
	Amount            int64     `json:"amount"`
	BalanceBefore     int64     `json:"balance_before"`
	BalanceAfter      int64     `json:"balance_after"`
	Description       *string   `json:"description,omitempty"`
	ExternalReference *string   `json:"external_reference,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type applyTransactionResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Balance     balanceResponse     `json:"balance"`
	Duplicate   bool                `json:"duplicate"`
}

// Spend debits credits from the account.
func Spend(svc LedgerService, logg *logger.Logger) http.HandlerFunc {
	return applyTransaction(svc, logg, enums.TransactionTypeSpend)
}

// Refund removes previously purchased credits after the payment processor
// returned money to the buyer.
func Refund(svc LedgerService, logg *logger.Logger) http.HandlerFunc {
	return applyTransaction(svc, logg, enums.TransactionTypeRefund)
}

// Bonus grants promotional credits.
func Bonus(svc LedgerService, logg *logger.Logger) http.HandlerFunc {
	return applyTransaction(svc, logg, enums.TransactionTypeBonus)
}

func applyTransaction(svc LedgerService, logg *logger.Logger, txType enums.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var req applyTransactionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Apply(ctx, ledgersvc.ApplyInput{
			AccountID:         chi.URLParam(r, "accountId"),
			Type:              txType,
			Amount:            req.Amount,
			Description:       req.Description,
			ExternalReference: req.ExternalReference,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Duplicate {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, applyTransactionResponse{
			Transaction: toTransactionResponse(result.Transaction),
			Balance:     toBalanceResponse(result.Balance),
			Duplicate:   result.Duplicate,
		})
	}
}

func toTransactionResponse(tx *models.CreditTransaction) transactionResponse {
	return transactionResponse{
		ID:                tx.ID.String(),
		AccountID:         tx.AccountID,
		SequenceNo:        tx.SequenceNo,
		Type:              string(tx.Type),
		Amount:            tx.Amount,
		BalanceBefore:     tx.BalanceBefore,
		BalanceAfter:      tx.BalanceAfter,
		Description:       tx.Description,
		ExternalReference: tx.ExternalReference,
		CreatedAt:         tx.CreatedAt.UTC(),
	}
}
