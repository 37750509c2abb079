package models

import "time"

// CreditBalance is the durable per-account snapshot of the ledger fold. It is
// written only by the ledger applier, inside the same transaction that appends
// the credit transaction it reflects.
type CreditBalance struct {
	AccountID      string    `gorm:"column:account_id;primaryKey" json:"account_id"`
	Balance        int64     `gorm:"column:balance;not null;default:0" json:"balance"`
	TotalPurchased int64     `gorm:"column:total_purchased;not null;default:0" json:"total_purchased"`
	TotalSpent     int64     `gorm:"column:total_spent;not null;default:0" json:"total_spent"`
	SequenceNo     int64     `gorm:"column:sequence_no;not null;default:0" json:"-"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName overrides gorm's pluralization.
func (CreditBalance) TableName() string {
	return "credit_balances"
}
