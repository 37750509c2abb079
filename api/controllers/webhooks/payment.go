package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/angelmondragon/creditledger-backend/api/responses"
	"github.com/angelmondragon/creditledger-backend/internal/purchases"
	"github.com/angelmondragon/creditledger-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/creditledger-backend/pkg/errors"
	"github.com/angelmondragon/creditledger-backend/pkg/logger"
)

const signatureHeader = "X-Payment-Signature"

type PaymentWebhookService interface {
	Confirm(ctx context.Context, confirmation purchases.PaymentConfirmation) (*purchases.Result, error)
}

type paymentEvent struct {
	ExternalReference string `json:"external_reference"`
	AccountID         string `json:"account_id"`
	PackageID         string `json:"package_id"`
	Status            string `json:"status"`
	CreditedAmount    int64  `json:"credited_amount"`
}

// PaymentWebhook receives settlement notifications from the payment processor
// and credits the purchased package. Redeliveries are absorbed by the ledger's
// reference guard, so the handler stays safe to retry.
func PaymentWebhook(svc PaymentWebhookService, signingSecret string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get(signatureHeader)
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payment signature missing"))
			return
		}
		if !validatePaymentSignature(payload, signingSecret, sigHeader) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment signature"))
			return
		}

		var event paymentEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		result, err := svc.Confirm(ctx, purchases.PaymentConfirmation{
			ExternalReference: event.ExternalReference,
			AccountID:         event.AccountID,
			PackageID:         event.PackageID,
			Status:            enums.PaymentStatus(event.Status),
			CreditedAmount:    event.CreditedAmount,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("payment event %s processed", event.ExternalReference))
		}
		responses.WriteSuccess(w, map[string]any{
			"applied":   result.Applied,
			"duplicate": result.Duplicate,
		})
	}
}

func validatePaymentSignature(payload []byte, secret, header string) bool {
	if header == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
