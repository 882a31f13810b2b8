package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/kenza-oss/kleerlogistics/api/routes"
	"github.com/kenza-oss/kleerlogistics/internal/delivery"
	"github.com/kenza-oss/kleerlogistics/internal/shipments"
	"github.com/kenza-oss/kleerlogistics/internal/sms"
	"github.com/kenza-oss/kleerlogistics/internal/users"
	"github.com/kenza-oss/kleerlogistics/internal/wallet"
	"github.com/kenza-oss/kleerlogistics/pkg/config"
	"github.com/kenza-oss/kleerlogistics/pkg/db"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
	"github.com/kenza-oss/kleerlogistics/pkg/migrate"
	"github.com/kenza-oss/kleerlogistics/pkg/outbox"
	"github.com/kenza-oss/kleerlogistics/pkg/redis"
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

	smsSender, err := sms.NewSender(cfg.SMS, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sms sender", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	shipmentService, err := shipments.NewService(shipments.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipments service", err)
		os.Exit(1)
	}

	walletService, err := wallet.NewService(wallet.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	userService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	counters, err := delivery.NewCounters(redisClient, cfg.Delivery)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery counters", err)
		os.Exit(1)
	}

	deliveryService, err := delivery.NewService(
		delivery.NewRepository(dbClient.DB()),
		shipments.NewRepository(dbClient.DB()),
		walletService,
		counters,
		smsSender,
		outboxService,
		userRepo,
		dbClient,
		logg,
		cfg.Delivery,
		cfg.Wallet.DefaultCommissionBP,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, shipmentService, deliveryService, userService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
