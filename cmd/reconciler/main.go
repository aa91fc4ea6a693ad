package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crowdspark/crowdspark-backend/internal/approvals"
	"github.com/crowdspark/crowdspark-backend/internal/audit"
	"github.com/crowdspark/crowdspark-backend/internal/campaigns"
	"github.com/crowdspark/crowdspark-backend/internal/clubs"
	"github.com/crowdspark/crowdspark-backend/internal/donations"
	"github.com/crowdspark/crowdspark-backend/internal/reconcile"
	"github.com/crowdspark/crowdspark-backend/pkg/config"
	"github.com/crowdspark/crowdspark-backend/pkg/db"
	"github.com/crowdspark/crowdspark-backend/pkg/logger"
	"github.com/crowdspark/crowdspark-backend/pkg/metrics"
	"github.com/crowdspark/crowdspark-backend/pkg/migrate"
	pkgredis "github.com/crowdspark/crowdspark-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "reconciler"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "reconciler",
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

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()

	auditService, err := audit.NewService(audit.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	machine, err := approvals.NewMachine(dbClient, auditService)
	if err != nil {
		logg.Error(context.Background(), "failed to create approval machine", err)
		os.Exit(1)
	}

	clubsService, err := clubs.NewService(clubs.NewRepository(gormDB), machine)
	if err != nil {
		logg.Error(context.Background(), "failed to create clubs service", err)
		os.Exit(1)
	}

	campaignsService, err := campaigns.NewService(
		campaigns.NewRepository(gormDB),
		clubsService,
		dbClient,
		auditService,
		machine,
		cfg.Funding.MaxReapprovals,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create campaigns service", err)
		os.Exit(1)
	}

	donationsService, err := donations.NewService(donations.NewRepository(gormDB), campaignsService, dbClient, auditService, cfg.Gateway.Secret)
	if err != nil {
		logg.Error(context.Background(), "failed to create donations service", err)
		os.Exit(1)
	}

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)

	orderExpiry, err := reconcile.NewOrderExpiryJob(reconcile.OrderExpiryJobParams{
		Logger:      logg,
		Donations:   donationsService,
		Metrics:     jobMetrics,
		OrderTTL:    cfg.Reconcile.OrderTTL,
		BatchSize:   cfg.Reconcile.BatchSize,
		MaxAttempts: cfg.Reconcile.MaxAttempts,
		Backoff:     cfg.Reconcile.RetryBackoff,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order expiry job", err)
		os.Exit(1)
	}

	lock, err := reconcile.NewRedisLock(redisClient, redisClient.LockKey("reconciler"), cfg.Reconcile.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciler lock", err)
		os.Exit(1)
	}

	runner, err := reconcile.NewRunner(reconcile.RunnerParams{
		Logger:   logg,
		Registry: reconcile.NewRegistry(orderExpiry),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Reconcile.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciler runner", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting reconciler")

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "reconciler stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "reconciler shutting down gracefully")
}
