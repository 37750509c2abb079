package purchases

import (
	"context"
	"testing"

	"github.com/angelmondragon/creditledger-backend/internal/ledger"
	"github.com/angelmondragon/creditledger-backend/internal/packages"
	"github.com/angelmondragon/creditledger-backend/pkg/db/models"
	"github.com/angelmondragon/creditledger-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/creditledger-backend/pkg/errors"
)

type stubLedger struct {
	applyFn func(ctx context.Context, input ledger.ApplyInput) (*ledger.ApplyResult, error)
	calls   []ledger.ApplyInput
}

func (s *stubLedger) Apply(ctx context.Context, input ledger.ApplyInput) (*ledger.ApplyResult, error) {
	s.calls = append(s.calls, input)
	if s.applyFn != nil {
		return s.applyFn(ctx, input)
	}
	return &ledger.ApplyResult{
		Transaction: &models.CreditTransaction{AccountID: input.AccountID, Amount: input.Amount, Type: input.Type},
		Balance:     &models.CreditBalance{AccountID: input.AccountID, Balance: input.Amount},
	}, nil
}

func (s *stubLedger) GetBalance(ctx context.Context, accountID string) (*models.CreditBalance, error) {
	return &models.CreditBalance{AccountID: accountID}, nil
}

func (s *stubLedger) ListHistory(ctx context.Context, params ledger.HistoryParams) (*ledger.HistoryPage, error) {
	return &ledger.HistoryPage{}, nil
}

type stubPackages struct {
	findFn func(ctx context.Context, id string) (*models.CreditPackage, error)
}

func (s *stubPackages) List(ctx context.Context) ([]packages.Package, error) { return nil, nil }
func (s *stubPackages) Find(ctx context.Context, id string) (*models.CreditPackage, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return &models.CreditPackage{ID: id}, nil
}

func newConfirmation() PaymentConfirmation {
	return PaymentConfirmation{
		ExternalReference: "pay_123",
		AccountID:         "acct-1",
		PackageID:         "standard",
		Status:            enums.PaymentStatusSucceeded,
		CreditedAmount:    5000,
	}
}

func TestConfirmRequiresReference(t *testing.T) {
	svc, _ := NewService(ServiceParams{Ledger: &stubLedger{}})
	confirmation := newConfirmation()
	confirmation.ExternalReference = ""
	if _, err := svc.Confirm(context.Background(), confirmation); err == nil {
		t.Fatal("expected error when reference is missing")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmRejectsUnknownStatus(t *testing.T) {
	svc, _ := NewService(ServiceParams{Ledger: &stubLedger{}})
	confirmation := newConfirmation()
	confirmation.Status = enums.PaymentStatus("settled")
	if _, err := svc.Confirm(context.Background(), confirmation); err == nil {
		t.Fatal("expected error for unknown status")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmIgnoresPending(t *testing.T) {
	ledgerStub := &stubLedger{}
	svc, _ := NewService(ServiceParams{Ledger: ledgerStub})
	confirmation := newConfirmation()
	confirmation.Status = enums.PaymentStatusPending

	result, err := svc.Confirm(context.Background(), confirmation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied {
		t.Fatal("pending payment must not credit the ledger")
	}
	if len(ledgerStub.calls) != 0 {
		t.Fatalf("expected no ledger writes, got %d", len(ledgerStub.calls))
	}
}

func TestConfirmRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := NewService(ServiceParams{Ledger: &stubLedger{}})
	confirmation := newConfirmation()
	confirmation.CreditedAmount = 0
	if _, err := svc.Confirm(context.Background(), confirmation); err == nil {
		t.Fatal("expected error for zero amount")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeInvalidAmount {
		t.Fatalf("expected invalid amount error, got %v", err)
	}
}

func TestConfirmAppliesPurchaseAndBonus(t *testing.T) {
	ledgerStub := &stubLedger{}
	packagesStub := &stubPackages{
		findFn: func(ctx context.Context, id string) (*models.CreditPackage, error) {
			return &models.CreditPackage{ID: id, Credits: 5000, BonusCredits: 250}, nil
		},
	}
	svc, _ := NewService(ServiceParams{Ledger: ledgerStub, Packages: packagesStub})

	result, err := svc.Confirm(context.Background(), newConfirmation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Applied {
		t.Fatal("succeeded payment not applied")
	}
	if len(ledgerStub.calls) != 2 {
		t.Fatalf("expected purchase and bonus legs, got %d calls", len(ledgerStub.calls))
	}

	purchase := ledgerStub.calls[0]
	if purchase.Type != enums.TransactionTypePurchase || purchase.Amount != 5000 {
		t.Fatalf("bad purchase leg: %+v", purchase)
	}
	if purchase.ExternalReference != "pay_123" {
		t.Fatalf("bad purchase reference: %s", purchase.ExternalReference)
	}

	bonus := ledgerStub.calls[1]
	if bonus.Type != enums.TransactionTypeBonus || bonus.Amount != 250 {
		t.Fatalf("bad bonus leg: %+v", bonus)
	}
	if bonus.ExternalReference != "pay_123:bonus" {
		t.Fatalf("bad bonus reference: %s", bonus.ExternalReference)
	}
	if result.Bonus == nil {
		t.Fatal("bonus transaction missing from result")
	}
}

func TestConfirmSkipsBonusWithoutPackage(t *testing.T) {
	ledgerStub := &stubLedger{}
	svc, _ := NewService(ServiceParams{Ledger: ledgerStub})
	confirmation := newConfirmation()
	confirmation.PackageID = ""

	result, err := svc.Confirm(context.Background(), confirmation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ledgerStub.calls) != 1 {
		t.Fatalf("expected only the purchase leg, got %d calls", len(ledgerStub.calls))
	}
	if result.Bonus != nil {
		t.Fatal("unexpected bonus leg")
	}
}

func TestConfirmReportsDuplicate(t *testing.T) {
	ledgerStub := &stubLedger{
		applyFn: func(ctx context.Context, input ledger.ApplyInput) (*ledger.ApplyResult, error) {
			return &ledger.ApplyResult{
				Transaction: &models.CreditTransaction{AccountID: input.AccountID},
				Balance:     &models.CreditBalance{AccountID: input.AccountID},
				Duplicate:   true,
			}, nil
		},
	}
	svc, _ := NewService(ServiceParams{Ledger: ledgerStub})
	confirmation := newConfirmation()
	confirmation.PackageID = ""

	result, err := svc.Confirm(context.Background(), confirmation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Duplicate || result.Applied {
		t.Fatalf("redelivery not reported as duplicate: %+v", result)
	}
}

func TestConfirmSurfacesBonusFailure(t *testing.T) {
	ledgerStub := &stubLedger{
		applyFn: func(ctx context.Context, input ledger.ApplyInput) (*ledger.ApplyResult, error) {
			if input.Type == enums.TransactionTypeBonus {
				return nil, pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")
			}
			return &ledger.ApplyResult{
				Transaction: &models.CreditTransaction{AccountID: input.AccountID},
				Balance:     &models.CreditBalance{AccountID: input.AccountID},
			}, nil
		},
	}
	packagesStub := &stubPackages{
		findFn: func(ctx context.Context, id string) (*models.CreditPackage, error) {
			return &models.CreditPackage{ID: id, Credits: 5000, BonusCredits: 250}, nil
		},
	}
	svc, _ := NewService(ServiceParams{Ledger: ledgerStub, Packages: packagesStub})

	result, err := svc.Confirm(context.Background(), newConfirmation())
	if err == nil {
		t.Fatal("expected bonus failure to surface")
	}
	if result == nil || result.Purchase == nil {
		t.Fatal("purchase leg should survive a bonus failure")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
