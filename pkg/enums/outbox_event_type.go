package enums

// OutboxEventType identifies the event stored in outbox_events.
type OutboxEventType string

const (
	OutboxEventTypeTransactionApplied OutboxEventType = "ledger.transaction_applied"
)

// IsValid reports whether the value matches a known outbox event type.
func (t OutboxEventType) IsValid() bool {
	return t == OutboxEventTypeTransactionApplied
}
