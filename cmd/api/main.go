package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tariqmansouri/vendora-backend/api/routes"
	"github.com/tariqmansouri/vendora-backend/internal/auth"
	"github.com/tariqmansouri/vendora-backend/internal/checkout"
	"github.com/tariqmansouri/vendora-backend/internal/compliance"
	"github.com/tariqmansouri/vendora-backend/internal/invoices"
	"github.com/tariqmansouri/vendora-backend/internal/ledger"
	"github.com/tariqmansouri/vendora-backend/internal/orders"
	"github.com/tariqmansouri/vendora-backend/internal/payouts"
	"github.com/tariqmansouri/vendora-backend/internal/products"
	"github.com/tariqmansouri/vendora-backend/internal/users"
	"github.com/tariqmansouri/vendora-backend/internal/webhooks"
	paymentwebhook "github.com/tariqmansouri/vendora-backend/internal/webhooks/payments"
	"github.com/tariqmansouri/vendora-backend/pkg/config"
	"github.com/tariqmansouri/vendora-backend/pkg/db"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/metrics"
	"github.com/tariqmansouri/vendora-backend/pkg/migrate"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox"
	"github.com/tariqmansouri/vendora-backend/pkg/redis"
	"github.com/tariqmansouri/vendora-backend/pkg/square"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap square", err)
		os.Exit(1)
	}

	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)

	usersRepo := users.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	complianceRepo := compliance.NewRepository(dbClient.DB())
	cartsRepo := checkout.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	payoutsRepo := payouts.NewRepository(dbClient.DB())
	invoicesRepo := invoices.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  usersRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	complianceService, err := compliance.NewService(complianceRepo, usersRepo, productsRepo, cfg.Engine)
	if err != nil {
		logg.Error(context.Background(), "failed to create compliance service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledgerRepo, cfg.Engine)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	invoicesService, err := invoices.NewService(invoicesRepo, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoices service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(dbClient, ordersRepo, ledgerService, invoicesService, outboxService, engineMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(dbClient, cartsRepo, ordersRepo, productsRepo, usersRepo, complianceService, outboxService, cfg.Engine, engineMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	payoutsService, err := payouts.NewService(dbClient, payoutsRepo, ledgerService, outboxService, engineMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payouts service", err)
		os.Exit(1)
	}

	paymentWebhookService, err := paymentwebhook.NewService(paymentwebhook.ServiceParams{
		Square:    squareClient,
		Converter: checkoutService,
		Orders:    ordersService,
		OrderRepo: ordersRepo,
		Carts:     cartsRepo,
		Metrics:   engineMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment webhook service", err)
		os.Exit(1)
	}

	paymentsGuard, err := webhooks.NewReplayGuard(redisClient, cfg.Webhooks.IdempotencyTTL, "payments")
	if err != nil {
		logg.Error(context.Background(), "failed to create payments replay guard", err)
		os.Exit(1)
	}
	trackingGuard, err := webhooks.NewReplayGuard(redisClient, cfg.Webhooks.IdempotencyTTL, "tracking")
	if err != nil {
		logg.Error(context.Background(), "failed to create tracking replay guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			authService,
			complianceService,
			checkoutService,
			ordersService,
			ledgerService,
			payoutsService,
			invoicesService,
			squareClient,
			paymentWebhookService,
			paymentsGuard,
			trackingGuard,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
