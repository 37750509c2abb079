package purchases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/creditledger-backend/internal/ledger"
	"github.com/angelmondragon/creditledger-backend/internal/packages"
	"github.com/angelmondragon/creditledger-backend/pkg/db/models"
	"github.com/angelmondragon/creditledger-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/creditledger-backend/pkg/errors"
	"github.com/angelmondragon/creditledger-backend/pkg/logger"
)

// PaymentConfirmation is what the payment processor reports after settling a
// checkout session. The processor round trip happened before this point; the
// ledger only sees the outcome.
type PaymentConfirmation struct {
	ExternalReference string
	AccountID         string
	PackageID         string
	Status            enums.PaymentStatus
	CreditedAmount    int64
}

// Result describes what the confirmation did to the ledger.
type Result struct {
	Applied   bool
	Duplicate bool
	Purchase  *models.CreditTransaction
	Bonus     *models.CreditTransaction
	Balance   *models.CreditBalance
}

// Service turns payment confirmations into ledger transactions.
type Service interface {
	Confirm(ctx context.Context, confirmation PaymentConfirmation) (*Result, error)
}

// ServiceParams groups dependencies for the purchase fulfillment service.
type ServiceParams struct {
	Ledger   ledger.Service
	Packages packages.Service
	Logger   *logger.Logger
}

type service struct {
	ledger   ledger.Service
	packages packages.Service
	logg     *logger.Logger
}

// NewService builds a purchase fulfillment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Ledger == nil {
		return nil, errors.New("ledger service is required")
	}
	return &service{
		ledger:   params.Ledger,
		packages: params.Packages,
		logg:     params.Logger,
	}, nil
}

// Confirm applies a succeeded payment as a purchase, plus a bonus leg when the
// purchased package carries bonus credits. Both legs are keyed by the payment
// reference, so redelivered confirmations are no-ops end to end.
func (s *service) Confirm(ctx context.Context, confirmation PaymentConfirmation) (*Result, error) {
	if confirmation.ExternalReference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external reference is required")
	}
	if confirmation.AccountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if !confirmation.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", confirmation.Status))
	}

	if confirmation.Status != enums.PaymentStatusSucceeded {
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"external_reference": confirmation.ExternalReference,
				"status":             confirmation.Status,
			})
			s.logg.Info(logCtx, "payment confirmation ignored")
		}
		return &Result{}, nil
	}
	if confirmation.CreditedAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "credited amount must be greater than zero")
	}

	purchase, err := s.ledger.Apply(ctx, ledger.ApplyInput{
		AccountID:         confirmation.AccountID,
		Type:              enums.TransactionTypePurchase,
		Amount:            confirmation.CreditedAmount,
		Description:       describePurchase(confirmation.PackageID),
		ExternalReference: confirmation.ExternalReference,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Applied:   !purchase.Duplicate,
		Duplicate: purchase.Duplicate,
		Purchase:  purchase.Transaction,
		Balance:   purchase.Balance,
	}

	bonus, bonusErr := s.applyBonus(ctx, confirmation)
	if bonusErr != nil {
		// The purchase leg already committed; surface the bonus failure
		// without undoing it so a redelivery can complete the grant.
		return result, multierr.Append(
			pkgerrors.New(pkgerrors.CodeDependency, "bonus credits not granted"),
			bonusErr,
		)
	}
	if bonus != nil {
		result.Bonus = bonus.Transaction
		result.Balance = bonus.Balance
	}
	return result, nil
}

func (s *service) applyBonus(ctx context.Context, confirmation PaymentConfirmation) (*ledger.ApplyResult, error) {
	if s.packages == nil || confirmation.PackageID == "" {
		return nil, nil
	}
	pkg, err := s.packages.Find(ctx, confirmation.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.BonusCredits <= 0 {
		return nil, nil
	}
	return s.ledger.Apply(ctx, ledger.ApplyInput{
		AccountID:         confirmation.AccountID,
		Type:              enums.TransactionTypeBonus,
		Amount:            pkg.BonusCredits,
		Description:       fmt.Sprintf("bonus credits for package %s", pkg.ID),
		ExternalReference: confirmation.ExternalReference + ":bonus",
	})
}

func describePurchase(packageID string) string {
	if packageID == "" {
		return "credit purchase"
	}
	return fmt.Sprintf("purchase of package %s", packageID)
}
