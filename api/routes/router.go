package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crowdspark/crowdspark-backend/api/controllers"
	"github.com/crowdspark/crowdspark-backend/api/middleware"
	"github.com/crowdspark/crowdspark-backend/internal/audit"
	"github.com/crowdspark/crowdspark-backend/internal/campaigns"
	"github.com/crowdspark/crowdspark-backend/internal/clubs"
	"github.com/crowdspark/crowdspark-backend/internal/donations"
	"github.com/crowdspark/crowdspark-backend/internal/eligibility"
	"github.com/crowdspark/crowdspark-backend/internal/withdrawals"
	"github.com/crowdspark/crowdspark-backend/pkg/config"
	"github.com/crowdspark/crowdspark-backend/pkg/db"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	"github.com/crowdspark/crowdspark-backend/pkg/logger"
	pkgredis "github.com/crowdspark/crowdspark-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	campaignsService campaigns.Service,
	donationsService donations.Service,
	eligibilityService eligibility.Service,
	clubsService clubs.Service,
	withdrawalsService withdrawals.Service,
	auditService audit.Service,
) http.Handler {
	var idemStore pkgredis.IdempotencyStore
	var redisP pkgredis.Pinger
	if redisClient != nil {
		idemStore = redisClient
		redisP = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	// Public browse surface plus the gateway-facing donation endpoints. The
	// gateway callbacks authenticate with the HMAC signature, not a bearer
	// token, so they stay outside the auth group.
	r.Route("/api/v1/donations", func(r chi.Router) {
		r.With(
			middleware.OptionalAuth(cfg.JWT, logg),
			middleware.Idempotency(idemStore, logg),
		).Post("/orders", controllers.DonationCreateOrder(donationsService, logg))
		r.Post("/verify", controllers.DonationVerify(donationsService, logg))
		r.Post("/fail", controllers.DonationFail(donationsService, logg))
	})

	r.Get("/api/v1/campaigns", controllers.CampaignList(campaignsService, logg))
	r.Get("/api/v1/campaigns/{campaignId}", controllers.CampaignGet(campaignsService, logg))
	r.Get("/api/v1/clubs/{clubId}", controllers.ClubGet(clubsService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/eligibility/me", controllers.EligibilityMe(eligibilityService, logg))

		r.Post("/campaigns", controllers.CampaignSubmit(campaignsService, logg))
		r.Post("/campaigns/{campaignId}/resubmit", controllers.CampaignResubmit(campaignsService, logg))

		r.Post("/clubs/verifications", controllers.ClubVerificationSubmit(clubsService, logg))
		r.Post("/clubs/referrals", controllers.ClubReferralSubmit(clubsService, logg))

		r.Post("/withdrawals", controllers.WithdrawalRequest(withdrawalsService, logg))
		r.Get("/withdrawals", controllers.WithdrawalList(withdrawalsService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/campaigns/{campaignId}", func(r chi.Router) {
			r.Post("/approve", controllers.AdminCampaignApprove(campaignsService, logg))
			r.Post("/reject", controllers.AdminCampaignReject(campaignsService, logg))
			r.Post("/disable", controllers.AdminCampaignDisable(campaignsService, logg))
		})

		r.Route("/club-verifications", func(r chi.Router) {
			r.Get("/", controllers.AdminClubVerificationList(clubsService, logg))
			r.Post("/{verificationId}/approve", controllers.AdminClubVerificationApprove(clubsService, logg))
			r.Post("/{verificationId}/reject", controllers.AdminClubVerificationReject(clubsService, logg))
			r.Post("/{verificationId}/disable", controllers.AdminClubVerificationDisable(clubsService, logg))
		})

		r.Route("/club-referrals", func(r chi.Router) {
			r.Get("/", controllers.AdminClubReferralList(clubsService, logg))
			r.Post("/{referralId}/approve", controllers.AdminClubReferralApprove(clubsService, logg))
			r.Post("/{referralId}/reject", controllers.AdminClubReferralReject(clubsService, logg))
		})

		r.Route("/withdrawals/{withdrawalId}", func(r chi.Router) {
			r.Post("/approve", controllers.AdminWithdrawalApprove(withdrawalsService, logg))
			r.Post("/reject", controllers.AdminWithdrawalReject(withdrawalsService, logg))
		})

		r.Get("/audit-logs", controllers.AdminAuditLogs(auditService, logg))
	})

	return r
}
