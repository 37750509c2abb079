package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/creditledger-backend/pkg/enums"
)

// CreditTransaction is one immutable, append-only balance mutation. Amount is
// always the positive magnitude; the signed effect follows from Type.
type CreditTransaction struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountID         string                `gorm:"column:account_id;not null;index" json:"account_id"`
	SequenceNo        int64                 `gorm:"column:sequence_no;not null" json:"sequence_no"`
	Type              enums.TransactionType `gorm:"column:type;type:credit_transaction_type_enum;not null" json:"type"`
	Amount            int64                 `gorm:"column:amount;not null" json:"amount"`
	BalanceBefore     int64                 `gorm:"column:balance_before;not null" json:"balance_before"`
	BalanceAfter      int64                 `gorm:"column:balance_after;not null" json:"balance_after"`
	Description       *string               `gorm:"column:description" json:"description,omitempty"`
	ExternalReference *string               `gorm:"column:external_reference" json:"external_reference,omitempty"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName overrides gorm's pluralization.
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
