package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/creditledger-backend/api/responses"
	ledgersvc "github.com/angelmondragon/creditledger-backend/internal/ledger"
	"github.com/angelmondragon/creditledger-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/creditledger-backend/pkg/errors"
	"github.com/angelmondragon/creditledger-backend/pkg/logger"
)

type historyResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	HasMore      bool                  `json:"has_more"`
}

// ListTransactions pages an account's ledger history, newest first.
func ListTransactions(svc LedgerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		query := r.URL.Query()
		limit, err := parseLimit(query.Get("limit"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offset, err := parseOffset(query.Get("offset"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var txType *enums.TransactionType
		if typ := strings.TrimSpace(query.Get("type")); typ != "" {
			parsed, parseErr := enums.ParseTransactionType(typ)
			if parseErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid type"))
				return
			}
			parsedType := parsed
			txType = &parsedType
		}

		page, err := svc.ListHistory(ctx, ledgersvc.HistoryParams{
			AccountID: chi.URLParam(r, "accountId"),
			Limit:     limit,
			Offset:    offset,
			Type:      txType,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payload := historyResponse{
			Transactions: make([]transactionResponse, len(page.Transactions)),
			Total:        page.Total,
			HasMore:      page.HasMore,
		}
		for i := range page.Transactions {
			payload.Transactions[i] = toTransactionResponse(&page.Transactions[i])
		}

		responses.WriteSuccess(w, payload)
	}
}

func parseLimit(value string) (int, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
	}
	return limit, nil
}

func parseOffset(value string) (int, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(value)
	if err != nil || offset < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "offset must be a non-negative integer")
	}
	return offset, nil
}
