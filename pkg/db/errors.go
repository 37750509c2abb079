package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolationCode = "23505"

// UniqueConstraint names a unique index in both supported dialects. Postgres
// reports the index name; sqlite reports the qualified column list
// ("UNIQUE constraint failed: table.col_a, table.col_b").
type UniqueConstraint struct {
	Name    string
	Columns []string
}

// IsUniqueViolation reports whether err is a duplicate-key error on the given
// constraint. A zero-valued constraint matches any unique violation.
func IsUniqueViolation(err error, constraint UniqueConstraint) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolationCode {
			return false
		}
		return constraint.Name == "" || pgErr.ConstraintName == constraint.Name
	}

	msg := err.Error()
	if constraint.Name != "" && strings.Contains(msg, constraint.Name) {
		return true
	}
	if strings.Contains(msg, "UNIQUE constraint failed") {
		for _, column := range constraint.Columns {
			if !strings.Contains(msg, column) {
				return false
			}
		}
		return len(constraint.Columns) > 0 || constraint.Name == ""
	}
	return constraint.Name == "" && len(constraint.Columns) == 0 &&
		strings.Contains(msg, "duplicate key value")
}
