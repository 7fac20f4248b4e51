package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tariqmansouri/vendora-backend/api/controllers"
	invoicecontrollers "github.com/tariqmansouri/vendora-backend/api/controllers/invoices"
	ordercontrollers "github.com/tariqmansouri/vendora-backend/api/controllers/orders"
	walletcontrollers "github.com/tariqmansouri/vendora-backend/api/controllers/wallet"
	webhookcontrollers "github.com/tariqmansouri/vendora-backend/api/controllers/webhooks"
	"github.com/tariqmansouri/vendora-backend/api/middleware"
	"github.com/tariqmansouri/vendora-backend/internal/auth"
	checkoutsvc "github.com/tariqmansouri/vendora-backend/internal/checkout"
	"github.com/tariqmansouri/vendora-backend/internal/compliance"
	"github.com/tariqmansouri/vendora-backend/internal/invoices"
	"github.com/tariqmansouri/vendora-backend/internal/ledger"
	"github.com/tariqmansouri/vendora-backend/internal/orders"
	"github.com/tariqmansouri/vendora-backend/internal/payouts"
	internalwebhooks "github.com/tariqmansouri/vendora-backend/internal/webhooks"
	paymentwebhook "github.com/tariqmansouri/vendora-backend/internal/webhooks/payments"
	"github.com/tariqmansouri/vendora-backend/pkg/config"
	"github.com/tariqmansouri/vendora-backend/pkg/db"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/redis"
	"github.com/tariqmansouri/vendora-backend/pkg/square"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database db.Pinger,
	redisClient *redis.Client,
	authService auth.Service,
	complianceService compliance.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	ledgerService ledger.Service,
	payoutsService payouts.Service,
	invoicesService invoices.Service,
	squareClient *square.Client,
	paymentWebhookService *paymentwebhook.Service,
	paymentsGuard *internalwebhooks.ReplayGuard,
	trackingGuard *internalwebhooks.ReplayGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Get("/healthz", controllers.Healthz(cfg, database, redisClient))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments", webhookcontrollers.Payments(paymentWebhookService, squareClient, paymentsGuard, logg))
		r.Post("/tracking", webhookcontrollers.Tracking(ordersService, cfg.Webhooks.TrackingSecret, trackingGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
	})

	// Invoice share links carry their own access token, so the lookup
	// stays outside the authenticated surface.
	r.Get("/api/v1/invoices/token/{accessToken}", invoicecontrollers.ByAccessToken(invoicesService, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("buyer", logg))
			r.Post("/v1/checkout", controllers.Checkout(checkoutService, logg))
			r.Post("/v1/checkout/evaluate", controllers.CheckoutEvaluate(complianceService, logg))
		})

		r.Route("/v1/orders", func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, "buyer", "vendor", "admin"))
			r.Get("/", ordercontrollers.List(ordersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
			r.Get("/{orderId}/history", ordercontrollers.History(ordersService, logg))
		})

		r.Route("/v1/wallet", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAnyRole(logg, "vendor", "admin"))
				r.Get("/balance", walletcontrollers.Balance(ledgerService, logg))
				r.Get("/entries", walletcontrollers.Entries(ledgerService, logg))
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("vendor", logg))
				r.Post("/payouts", walletcontrollers.RequestPayout(payoutsService, logg))
				r.Get("/payouts", walletcontrollers.ListPayouts(payoutsService, logg))
			})
		})

		r.Get("/v1/invoices", invoicecontrollers.List(invoicesService, logg))

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Post("/orders/{orderId}/status", controllers.AdminOrderStatus(ordersService, logg))
			r.Route("/payouts", func(r chi.Router) {
				r.Get("/", controllers.AdminPayoutList(payoutsService, logg))
				r.Post("/{payoutId}/approve", controllers.AdminPayoutApprove(payoutsService, logg))
				r.Post("/{payoutId}/reject", controllers.AdminPayoutReject(payoutsService, logg))
				r.Post("/{payoutId}/pay", controllers.AdminPayoutPay(payoutsService, logg))
			})
		})
	})

	return r
}
