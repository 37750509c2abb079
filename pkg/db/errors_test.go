package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var testConstraint = UniqueConstraint{
	Name:    "ux_credit_transactions_account_reference",
	Columns: []string{"credit_transactions.account_id", "credit_transactions.external_reference"},
}

func TestIsUniqueViolationPostgres(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: testConstraint.Name}
	assert.True(t, IsUniqueViolation(dup, testConstraint))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create transaction: %w", dup), testConstraint))
	assert.True(t, IsUniqueViolation(dup, UniqueConstraint{}))

	otherIndex := &pgconn.PgError{Code: "23505", ConstraintName: "ux_credit_transactions_account_sequence"}
	assert.False(t, IsUniqueViolation(otherIndex, testConstraint))

	notNull := &pgconn.PgError{Code: "23502"}
	assert.False(t, IsUniqueViolation(notNull, testConstraint))
}

func TestIsUniqueViolationSQLite(t *testing.T) {
	// sqlite reports the column list, never the index name.
	dup := errors.New("UNIQUE constraint failed: credit_transactions.account_id, credit_transactions.external_reference")
	assert.True(t, IsUniqueViolation(dup, testConstraint))
	assert.True(t, IsUniqueViolation(dup, UniqueConstraint{}))

	otherIndex := errors.New("UNIQUE constraint failed: credit_transactions.account_id, credit_transactions.sequence_no")
	assert.False(t, IsUniqueViolation(otherIndex, testConstraint))
}

func TestIsUniqueViolationUnrelatedErrors(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil, testConstraint))
	assert.False(t, IsUniqueViolation(errors.New("connection refused"), testConstraint))
	assert.False(t, IsUniqueViolation(errors.New("connection refused"), UniqueConstraint{}))
}
