package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/creditledger-backend/pkg/db/models"
	"github.com/angelmondragon/creditledger-backend/pkg/enums"
	"github.com/angelmondragon/creditledger-backend/pkg/pagination"
)

// Repository manages persistence for the credit ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockBalance(ctx context.Context, accountID string) (*models.CreditBalance, error)
	FindBalance(ctx context.Context, accountID string) (*models.CreditBalance, error)
	SaveBalance(ctx context.Context, balance *models.CreditBalance) error
	CreateTransaction(ctx context.Context, transaction *models.CreditTransaction) error
	FindByExternalReference(ctx context.Context, accountID, reference string) (*models.CreditTransaction, error)
	ListTransactions(ctx context.Context, query ListTransactionsQuery) ([]models.CreditTransaction, int64, error)
}

// ListTransactionsQuery configures history list queries.
type ListTransactionsQuery struct {
	AccountID string
	Page      pagination.Params
	Type      *enums.TransactionType
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// LockBalance loads the account's balance row under FOR UPDATE, creating the
// zero row on first use. The row lock is what serializes concurrent applies on
// the same account; SQLite serializes writers at the database level, so the
// locking clause is a Postgres concern.
func (r *repository) LockBalance(ctx context.Context, accountID string) (*models.CreditBalance, error) {
	balance, err := r.lockQuery(ctx, accountID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seed := models.CreditBalance{AccountID: accountID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seed).Error; err != nil {
		return nil, err
	}
	return r.lockQuery(ctx, accountID)
}

func (r *repository) lockQuery(ctx context.Context, accountID string) (*models.CreditBalance, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var balance models.CreditBalance
	if err := q.Where("account_id = ?", accountID).First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repository) FindBalance(ctx context.Context, accountID string) (*models.CreditBalance, error) {
	var balance models.CreditBalance
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *repository) SaveBalance(ctx context.Context, balance *models.CreditBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

func (r *repository) CreateTransaction(ctx context.Context, transaction *models.CreditTransaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repository) FindByExternalReference(ctx context.Context, accountID, reference string) (*models.CreditTransaction, error) {
	var transaction models.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND external_reference = ?", accountID, reference).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

// ListTransactions pages the account's log by sequence number so concurrent
// appends can only prepend to page zero, never punch gaps into later pages.
func (r *repository) ListTransactions(ctx context.Context, query ListTransactionsQuery) ([]models.CreditTransaction, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.CreditTransaction{}).
		Where("account_id = ?", query.AccountID)
	if query.Type != nil {
		base = base.Where("type = ?", *query.Type)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CreditTransaction
	err := base.
		Order("sequence_no DESC").
		Limit(query.Page.Limit).
		Offset(query.Page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
