package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopkart-labs/shopkart-backend/api/routes"
	"github.com/shopkart-labs/shopkart-backend/internal/accounts"
	cartsvc "github.com/shopkart-labs/shopkart-backend/internal/cart"
	"github.com/shopkart-labs/shopkart-backend/internal/catalog"
	"github.com/shopkart-labs/shopkart-backend/internal/coupons"
	"github.com/shopkart-labs/shopkart-backend/internal/invoices"
	"github.com/shopkart-labs/shopkart-backend/internal/maintenance"
	"github.com/shopkart-labs/shopkart-backend/internal/notifications"
	"github.com/shopkart-labs/shopkart-backend/internal/payments"
	"github.com/shopkart-labs/shopkart-backend/pkg/auth/session"
	"github.com/shopkart-labs/shopkart-backend/pkg/config"
	"github.com/shopkart-labs/shopkart-backend/pkg/db"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
	"github.com/shopkart-labs/shopkart-backend/pkg/metrics"
	"github.com/shopkart-labs/shopkart-backend/pkg/migrate"
	"github.com/shopkart-labs/shopkart-backend/pkg/razorpay"
	"github.com/shopkart-labs/shopkart-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	var mailer notifications.Mailer
	if cfg.Sendgrid.APIKey != "" {
		sg, err := notifications.NewSendgridMailer(cfg.Sendgrid, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create sendgrid mailer", err)
			os.Exit(1)
		}
		mailer = sg
	} else {
		logg.Warn(context.Background(), "sendgrid not configured, falling back to log-only mailer")
		mailer = notifications.NewNoopMailer(logg)
	}

	accountsService, err := accounts.NewService(
		accounts.NewRepository(dbClient.DB()),
		redisClient,
		sessionManager,
		mailer,
		cfg.JWT,
		cfg.Password,
		cfg.App.BaseURL,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	couponsRepo := coupons.NewRepository(dbClient.DB())
	couponsService, err := coupons.NewService(couponsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupons service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.NewRepository(dbClient.DB()), catalogRepo, couponsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	gateway, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create razorpay client", err)
		os.Exit(1)
	}

	invoiceGenerator, err := invoices.NewGenerator(cfg.Invoice)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice generator", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		dbClient,
		cartService,
		gateway,
		invoiceGenerator,
		mailer,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	maintenanceService, err := maintenance.NewService(maintenance.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		SessionManager: sessionManager,
		HTTPMetrics:    httpMetrics,
		Accounts:       accountsService,
		Catalog:        catalogService,
		Cart:           cartService,
		Coupons:        couponsService,
		Payments:       paymentsService,
		Maintenance:    maintenanceService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
