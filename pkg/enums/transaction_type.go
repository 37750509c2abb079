package enums

import "fmt"

// TransactionType maps to the credit_transaction_type_enum enum in Postgres.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeSpend    TransactionType = "spend"
	TransactionTypeRefund   TransactionType = "refund"
	TransactionTypeBonus    TransactionType = "bonus"
)

var validTransactionTypes = []TransactionType{
	TransactionTypePurchase,
	TransactionTypeSpend,
	TransactionTypeRefund,
	TransactionTypeBonus,
}

// IsValid reports whether the value matches the canonical transaction type enum.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Credits reports whether the type increases the balance. Purchase and bonus
// add credits; spend and refund subtract them. A refund reverses a prior
// purchase, so the credits leave the account when the money goes back.
func (t TransactionType) Credits() bool {
	return t == TransactionTypePurchase || t == TransactionTypeBonus
}

// Sign returns +1 for crediting types and -1 for debiting types.
func (t TransactionType) Sign() int64 {
	if t.Credits() {
		return 1
	}
	return -1
}

// RequiresReference reports whether the type must carry an external reference.
func (t TransactionType) RequiresReference() bool {
	return t == TransactionTypePurchase
}

// ParseTransactionType converts raw input into TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
