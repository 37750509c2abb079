package outbox

import (
	"encoding/json"
	"time"
)

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// TransactionAppliedPayload is the data section of a
// ledger.transaction_applied event.
type TransactionAppliedPayload struct {
	TransactionID     string  `json:"transactionId"`
	AccountID         string  `json:"accountId"`
	SequenceNo        int64   `json:"sequenceNo"`
	Type              string  `json:"type"`
	Amount            int64   `json:"amount"`
	BalanceAfter      int64   `json:"balanceAfter"`
	ExternalReference *string `json:"externalReference,omitempty"`
}
