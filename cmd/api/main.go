package main

import (
	"context"
	"net/http"
	"os"

	"github.com/bechdu/buyback-backend/api/routes"
	internalauth "github.com/bechdu/buyback-backend/internal/auth"
	"github.com/bechdu/buyback-backend/internal/coinbands"
	"github.com/bechdu/buyback-backend/internal/directory"
	"github.com/bechdu/buyback-backend/internal/dispatch"
	"github.com/bechdu/buyback-backend/internal/invoices"
	"github.com/bechdu/buyback-backend/internal/ledger"
	"github.com/bechdu/buyback-backend/internal/orders"
	"github.com/bechdu/buyback-backend/internal/payments"
	"github.com/bechdu/buyback-backend/internal/refunds"
	"github.com/bechdu/buyback-backend/internal/sms"
	"github.com/bechdu/buyback-backend/pkg/config"
	"github.com/bechdu/buyback-backend/pkg/db"
	"github.com/bechdu/buyback-backend/pkg/logger"
	"github.com/bechdu/buyback-backend/pkg/migrate"
	"github.com/bechdu/buyback-backend/pkg/redis"
	"github.com/joho/godotenv"
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

	svcs, err := buildServices(cfg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client) (routes.Services, error) {
	gdb := dbClient.DB()

	directorySvc, err := directory.NewService(directory.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	bandsSvc, err := coinbands.NewService(coinbands.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	refundsSvc, err := refunds.NewService(refunds.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	ledgerSvc, err := ledger.NewService(ledger.ServiceParams{
		Repo: ledger.NewRepository(gdb),
		Tx:   dbClient,
	})
	if err != nil {
		return routes.Services{}, err
	}

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewRepository(gdb),
		Tx:      dbClient,
		Ledger:  ledgerSvc,
		Refunds: refundsSvc,
		Bands:   bandsSvc,
	})
	if err != nil {
		return routes.Services{}, err
	}

	dispatchSvc, err := dispatch.NewService(dispatch.ServiceParams{
		Orders:    orders.NewRepository(gdb),
		OrdersSvc: ordersSvc,
		Directory: directorySvc,
	})
	if err != nil {
		return routes.Services{}, err
	}

	paymentsSvc, err := payments.NewService(payments.ServiceParams{
		Repo:    payments.NewRepository(gdb),
		Tx:      dbClient,
		Ledger:  ledgerSvc,
		Company: cfg.Company,
	})
	if err != nil {
		return routes.Services{}, err
	}

	sender, err := sms.NewClient(cfg.SMS)
	if err != nil {
		return routes.Services{}, err
	}

	authSvc, err := internalauth.NewService(internalauth.ServiceParams{
		Repo:   internalauth.NewRepository(gdb),
		Sender: sender,
		JWT:    cfg.JWT,
		OTP:    cfg.OTP,
	})
	if err != nil {
		return routes.Services{}, err
	}

	invoicesSvc, err := invoices.NewService(invoices.ServiceParams{
		Ledger:    ledgerSvc,
		Directory: directorySvc,
		Company:   cfg.Company,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:      authSvc,
		Directory: directorySvc,
		Orders:    ordersSvc,
		Dispatch:  dispatchSvc,
		Ledger:    ledgerSvc,
		CoinBands: bandsSvc,
		Refunds:   refundsSvc,
		Payments:  paymentsSvc,
		Invoices:  invoicesSvc,
	}, nil
}
