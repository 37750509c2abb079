package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/creditledger-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/creditledger-backend/api/controllers/webhooks"
	"github.com/angelmondragon/creditledger-backend/api/middleware"
	"github.com/angelmondragon/creditledger-backend/pkg/config"
	"github.com/angelmondragon/creditledger-backend/pkg/logger"
	"github.com/angelmondragon/creditledger-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	metricsGatherer prometheus.Gatherer,
	ledgerService controllers.LedgerService,
	packagesService controllers.PackagesService,
	purchasesService webhookcontrollers.PaymentWebhookService,
	healthDeps ...controllers.Dependency,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps...))
	})

	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments", webhookcontrollers.PaymentWebhook(purchasesService, cfg.Webhook.PaymentSigningSecret, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Get("/packages", controllers.ListPackages(packagesService, logg))

		r.Route("/accounts/{accountId}", func(r chi.Router) {
			r.Use(middleware.AccountContext(logg))
			r.Get("/ping", controllers.AccountPing())
			r.Get("/balance", controllers.GetBalance(ledgerService, logg))
			r.Get("/transactions", controllers.ListTransactions(ledgerService, logg))
			r.Post("/spend", controllers.Spend(ledgerService, logg))
			r.Post("/refund", controllers.Refund(ledgerService, logg))
			r.Post("/bonus", controllers.Bonus(ledgerService, logg))
		})
	})

	return r
}
