package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/creditledger-backend/pkg/db"
	"github.com/angelmondragon/creditledger-backend/pkg/db/models"
	"github.com/angelmondragon/creditledger-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/creditledger-backend/pkg/errors"
	"github.com/angelmondragon/creditledger-backend/pkg/logger"
	"github.com/angelmondragon/creditledger-backend/pkg/metrics"
	"github.com/angelmondragon/creditledger-backend/pkg/outbox"
	"github.com/angelmondragon/creditledger-backend/pkg/pagination"
)

var referenceConstraint = dbpkg.UniqueConstraint{
	Name:    "ux_credit_transactions_account_reference",
	Columns: []string{"credit_transactions.account_id", "credit_transactions.external_reference"},
}

// TxRunner abstracts db.Client.WithTx for the applier's atomic unit.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the single authority over the write path of the credit ledger.
type Service interface {
	Apply(ctx context.Context, input ApplyInput) (*ApplyResult, error)
	GetBalance(ctx context.Context, accountID string) (*models.CreditBalance, error)
	ListHistory(ctx context.Context, params HistoryParams) (*HistoryPage, error)
}

// ApplyInput is a proposed balance mutation. Amount is the positive magnitude;
// the signed effect follows from Type.
type ApplyInput struct {
	AccountID         string
	Type              enums.TransactionType
	Amount            int64
	Description       string
	ExternalReference string
}

// ApplyResult carries the committed (or previously committed) transaction and
// the balance snapshot after it.
type ApplyResult struct {
	Transaction *models.CreditTransaction
	Balance     *models.CreditBalance
	Duplicate   bool
}

// HistoryParams configures a paged history read.
type HistoryParams struct {
	AccountID string
	Limit     int
	Offset    int
	Type      *enums.TransactionType
}

// HistoryPage is one page of an account's transaction log.
type HistoryPage struct {
	Transactions []models.CreditTransaction
	Total        int64
	HasMore      bool
}

// ServiceParams groups dependencies for the ledger service.
type ServiceParams struct {
	Tx      TxRunner
	Repo    Repository
	Outbox  *outbox.Service
	Metrics *metrics.LedgerMetrics
	Logger  *logger.Logger
}

type service struct {
	tx      TxRunner
	repo    Repository
	outbox  *outbox.Service
	metrics *metrics.LedgerMetrics
	logg    *logger.Logger
}

// NewService wires a ledger service with the provided dependencies. Outbox and
// metrics are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if params.Repo == nil {
		return nil, errors.New("ledger repository required")
	}
	return &service{
		tx:      params.Tx,
		repo:    params.Repo,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) Apply(ctx context.Context, input ApplyInput) (*ApplyResult, error) {
	if err := s.validate(input); err != nil {
		s.metrics.IncRejected(string(pkgerrors.As(err).Code()))
		return nil, err
	}

	start := time.Now()
	var result *ApplyResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		applied, txErr := s.applyLocked(ctx, s.repo.WithTx(tx), tx, input)
		if txErr != nil {
			return txErr
		}
		result = applied
		return nil
	})
	if err != nil {
		// The row lock serializes same-account applies, so the unique
		// reference index only fires when something bypassed the guard;
		// recover by returning the transaction that won.
		if dbpkg.IsUniqueViolation(err, referenceConstraint) {
			return s.recoverDuplicate(ctx, input)
		}
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncRejected(string(typed.Code()))
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply transaction")
	}

	s.metrics.ObserveApply(string(input.Type), time.Since(start))
	if !result.Duplicate {
		s.metrics.IncApplied(string(input.Type))
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"account_id":  input.AccountID,
				"type":        input.Type,
				"amount":      input.Amount,
				"sequence_no": result.Transaction.SequenceNo,
			})
			s.logg.Info(logCtx, "ledger transaction applied")
		}
	}
	return result, nil
}

func (s *service) validate(input ApplyInput) error {
	if input.AccountID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", input.Type))
	}
	if input.Amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidAmount, "amount must be greater than zero")
	}
	if input.Type.RequiresReference() && input.ExternalReference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "external reference is required for purchases")
	}
	return nil
}

// applyLocked runs the indivisible section: everything below happens while the
// account's balance row is held FOR UPDATE.
func (s *service) applyLocked(ctx context.Context, repo Repository, tx *gorm.DB, input ApplyInput) (*ApplyResult, error) {
	balance, err := repo.LockBalance(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := checkInvariant(balance); err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithAccountID(ctx, input.AccountID), "ledger invariant violation", err)
		}
		return nil, err
	}

	// Idempotency guard: a crediting mutation that carries a reference the
	// account has already absorbed returns the original transaction.
	if input.ExternalReference != "" && input.Type.Credits() {
		existing, findErr := repo.FindByExternalReference(ctx, input.AccountID, input.ExternalReference)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			return &ApplyResult{Transaction: existing, Balance: balance, Duplicate: true}, nil
		}
	}

	signed := input.Amount * input.Type.Sign()
	newBalance := balance.Balance + signed
	if newBalance < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance,
			fmt.Sprintf("balance %d cannot absorb %s of %d", balance.Balance, input.Type, input.Amount)).
			WithDetails(map[string]any{"balance": balance.Balance, "amount": input.Amount})
	}

	transaction := &models.CreditTransaction{
		ID:            uuid.New(),
		AccountID:     input.AccountID,
		SequenceNo:    balance.SequenceNo + 1,
		Type:          input.Type,
		Amount:        input.Amount,
		BalanceBefore: balance.Balance,
		BalanceAfter:  newBalance,
	}
	if input.Description != "" {
		desc := input.Description
		transaction.Description = &desc
	}
	if input.ExternalReference != "" {
		ref := input.ExternalReference
		transaction.ExternalReference = &ref
	}

	if err := repo.CreateTransaction(ctx, transaction); err != nil {
		return nil, err
	}

	balance.Balance = newBalance
	balance.SequenceNo = transaction.SequenceNo
	if input.Type.Credits() {
		balance.TotalPurchased += input.Amount
	} else {
		balance.TotalSpent += input.Amount
	}
	if err := repo.SaveBalance(ctx, balance); err != nil {
		return nil, err
	}

	if s.outbox != nil {
		event := outbox.DomainEvent{
			EventType:   enums.OutboxEventTypeTransactionApplied,
			AggregateID: input.AccountID,
			Version:     1,
			Data: outbox.TransactionAppliedPayload{
				TransactionID:     transaction.ID.String(),
				AccountID:         transaction.AccountID,
				SequenceNo:        transaction.SequenceNo,
				Type:              string(transaction.Type),
				Amount:            transaction.Amount,
				BalanceAfter:      transaction.BalanceAfter,
				ExternalReference: transaction.ExternalReference,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	return &ApplyResult{Transaction: transaction, Balance: balance}, nil
}

// checkInvariant verifies the snapshot still equals the fold of its log. The
// counters absorb every applied magnitude, so the snapshot must satisfy
// balance == total_purchased - total_spent at all times.
func checkInvariant(balance *models.CreditBalance) error {
	if balance.Balance < 0 ||
		balance.Balance != balance.TotalPurchased-balance.TotalSpent {
		return pkgerrors.New(pkgerrors.CodeInternal,
			fmt.Sprintf("balance snapshot for %s disagrees with ledger fold", balance.AccountID))
	}
	return nil
}

func (s *service) recoverDuplicate(ctx context.Context, input ApplyInput) (*ApplyResult, error) {
	existing, err := s.repo.FindByExternalReference(ctx, input.AccountID, input.ExternalReference)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "duplicate reference detected but original transaction not found")
	}
	// A colliding reference only means "already applied" when the types agree;
	// reporting a prior purchase as a completed spend would fake a debit.
	if existing.Type != input.Type {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("reference %s already used by a %s transaction", input.ExternalReference, existing.Type))
	}
	balance, err := s.GetBalance(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	return &ApplyResult{Transaction: existing, Balance: balance, Duplicate: true}, nil
}

// GetBalance returns the account's snapshot, zero-valued when the account has
// no transactions yet.
func (s *service) GetBalance(ctx context.Context, accountID string) (*models.CreditBalance, error) {
	if accountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	balance, err := s.repo.FindBalance(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read balance")
	}
	if balance == nil {
		return &models.CreditBalance{AccountID: accountID}, nil
	}
	if err := checkInvariant(balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *service) ListHistory(ctx context.Context, params HistoryParams) (*HistoryPage, error) {
	if params.AccountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	page := pagination.Params{Limit: params.Limit, Offset: params.Offset}.Normalize()
	rows, total, err := s.repo.ListTransactions(ctx, ListTransactionsQuery{
		AccountID: params.AccountID,
		Page:      page,
		Type:      params.Type,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return &HistoryPage{
		Transactions: rows,
		Total:        total,
		HasMore:      pagination.HasMore(page.Offset, len(rows), total),
	}, nil
}
