package packages

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/creditledger-backend/pkg/db/models"
)

// Repository manages persistence for the credit package catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context) ([]models.CreditPackage, error)
	FindByID(ctx context.Context, id string) (*models.CreditPackage, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a package repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActive(ctx context.Context) ([]models.CreditPackage, error) {
	var rows []models.CreditPackage
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("price_cents ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.CreditPackage, error) {
	var pkg models.CreditPackage
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}
