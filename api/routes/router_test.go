package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/creditledger-backend/internal/ledger"
	"github.com/angelmondragon/creditledger-backend/internal/packages"
	"github.com/angelmondragon/creditledger-backend/internal/purchases"
	"github.com/angelmondragon/creditledger-backend/pkg/config"
	"github.com/angelmondragon/creditledger-backend/pkg/db/models"
)

type stubLedgerService struct{}

func (stubLedgerService) Apply(ctx context.Context, input ledger.ApplyInput) (*ledger.ApplyResult, error) {
	return &ledger.ApplyResult{
		Transaction: &models.CreditTransaction{AccountID: input.AccountID, Type: input.Type, Amount: input.Amount},
		Balance:     &models.CreditBalance{AccountID: input.AccountID},
	}, nil
}

func (stubLedgerService) GetBalance(ctx context.Context, accountID string) (*models.CreditBalance, error) {
	return &models.CreditBalance{AccountID: accountID}, nil
}

func (stubLedgerService) ListHistory(ctx context.Context, params ledger.HistoryParams) (*ledger.HistoryPage, error) {
	return &ledger.HistoryPage{}, nil
}

type stubPackagesService struct{}

func (stubPackagesService) List(ctx context.Context) ([]packages.Package, error) {
	return nil, nil
}

type stubPurchasesService struct{}

func (stubPurchasesService) Confirm(ctx context.Context, confirmation purchases.PaymentConfirmation) (*purchases.Result, error) {
	return &purchases.Result{}, nil
}

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Webhook.PaymentSigningSecret = "whsec_test"
	return NewRouter(cfg, nil, nil, nil, stubLedgerService{}, stubPackagesService{}, stubPurchasesService{})
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterPublicPing(t *testing.T) {
	router := newTestRouter()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/public/ping", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterAccountRoutes(t *testing.T) {
	router := newTestRouter()

	balance := httptest.NewRecorder()
	router.ServeHTTP(balance, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-1/balance", nil))
	if balance.Code != http.StatusOK {
		t.Fatalf("balance: expected 200 got %d", balance.Code)
	}

	history := httptest.NewRecorder()
	router.ServeHTTP(history, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-1/transactions", nil))
	if history.Code != http.StatusOK {
		t.Fatalf("history: expected 200 got %d", history.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestRouterWebhookRequiresSignature(t *testing.T) {
	router := newTestRouter()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
