package main

import (
	"context"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/api/routes"
	"github.com/crowdspark/crowdspark-backend/internal/approvals"
	"github.com/crowdspark/crowdspark-backend/internal/audit"
	"github.com/crowdspark/crowdspark-backend/internal/campaigns"
	"github.com/crowdspark/crowdspark-backend/internal/clubs"
	"github.com/crowdspark/crowdspark-backend/internal/donations"
	"github.com/crowdspark/crowdspark-backend/internal/eligibility"
	"github.com/crowdspark/crowdspark-backend/internal/withdrawals"
	"github.com/crowdspark/crowdspark-backend/pkg/config"
	"github.com/crowdspark/crowdspark-backend/pkg/db"
	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/env"
	"github.com/crowdspark/crowdspark-backend/pkg/logger"
	"github.com/crowdspark/crowdspark-backend/pkg/migrate"
	pkgredis "github.com/crowdspark/crowdspark-backend/pkg/redis"
)

// campaignSource adapts the campaigns service and repository to the
// withdrawal gate, which needs a row-locked read inside its transaction.
type campaignSource struct {
	svc  campaigns.Service
	repo campaigns.Repository
}

func (c campaignSource) Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return c.svc.Get(ctx, id)
}

func (c campaignSource) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Campaign, error) {
	return c.repo.WithTx(tx).FindByIDForUpdate(ctx, id)
}

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

	campaignsRepo := campaigns.NewRepository(gormDB)
	campaignsService, err := campaigns.NewService(campaignsRepo, clubsService, dbClient, auditService, machine, cfg.Funding.MaxReapprovals)
	if err != nil {
		logg.Error(context.Background(), "failed to create campaigns service", err)
		os.Exit(1)
	}

	donationsService, err := donations.NewService(donations.NewRepository(gormDB), campaignsService, dbClient, auditService, cfg.Gateway.Secret)
	if err != nil {
		logg.Error(context.Background(), "failed to create donations service", err)
		os.Exit(1)
	}

	eligibilityService, err := eligibility.NewService(donationsService, campaignsService, cfg.Funding.PerProjectCost)
	if err != nil {
		logg.Error(context.Background(), "failed to create eligibility service", err)
		os.Exit(1)
	}

	withdrawalsService, err := withdrawals.NewService(
		withdrawals.NewRepository(gormDB),
		campaignSource{svc: campaignsService, repo: campaignsRepo},
		dbClient,
		auditService,
		machine,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create withdrawals service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			campaignsService,
			donationsService,
			eligibilityService,
			clubsService,
			withdrawalsService,
			auditService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
