package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/api/responses"
	"github.com/crowdspark/crowdspark-backend/api/validators"
	"github.com/crowdspark/crowdspark-backend/internal/audit"
	"github.com/crowdspark/crowdspark-backend/internal/campaigns"
	"github.com/crowdspark/crowdspark-backend/internal/clubs"
	"github.com/crowdspark/crowdspark-backend/internal/withdrawals"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/logger"
)

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// decisionFunc applies an admin transition to one record.
type decisionFunc func(ctx context.Context, id, actorID uuid.UUID) error

// rejectFunc applies an admin rejection, which always carries a reason.
type rejectFunc func(ctx context.Context, id, actorID uuid.UUID, reason string) error

func serviceUnavailable(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "service unavailable"))
	}
}

func adminDecision(param string, fn decisionFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := parseActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := parsePathUUID(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := fn(r.Context(), id, actorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func adminReject(param string, fn rejectFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := parseActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := parsePathUUID(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := fn(r.Context(), id, actorID, payload.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func AdminCampaignApprove(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serviceUnavailable(logg)
	}
	return adminDecision("campaignId", svc.Approve, logg)
}

func AdminCampaignReject(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serviceUnavailable(logg)
	}
	return adminReject("campaignId", svc.Reject, logg)
}

func AdminCampaignDisable(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serviceUnavailable(logg)
	}
	return adminDecision("campaignId", svc.Disable, logg)
}

func AdminClubVerificationApprove(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serviceUnavailable(logg)
	}
	return adminDecision("verificationId", svc.ApproveVerification, logg)
}

func AdminClubVerificationReject(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serviceUnavailable(logg)
	}
	return adminReject("verificationId", svc.RejectVerification, logg)
}

func AdminClubVerificationDisable(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serviceUnavailable(logg)
	}
	return adminDecision("verificationId", svc.DisableVerification, logg)
}

func AdminClubReferralApprove(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serviceUnavailable(logg)
	}
	return adminDecision("referralId", svc.ApproveReferral, logg)
}

func AdminClubReferralReject(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serviceUnavailable(logg)
	}
	return adminReject("referralId", svc.RejectReferral, logg)
}

func AdminWithdrawalApprove(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serviceUnavailable(logg)
	}
	return adminDecision("withdrawalId", svc.Approve, logg)
}

func AdminWithdrawalReject(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serviceUnavailable(logg)
	}
	return adminReject("withdrawalId", svc.Reject, logg)
}

// AdminClubVerificationList pages pending or historical verification requests.
func AdminClubVerificationList(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "clubs service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := parseStatusParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := svc.ListVerifications(r.Context(), params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"verifications": items,
			"next_cursor":   encodeCursor(next),
		})
	}
}

// AdminClubReferralList pages president referral nominations.
func AdminClubReferralList(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "clubs service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := parseStatusParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := svc.ListReferrals(r.Context(), params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"referrals":   items,
			"next_cursor": encodeCursor(next),
		})
	}
}

// AdminAuditLogs pages the immutable audit trail with optional entity, actor
// and time filters.
func AdminAuditLogs(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters audit.Filters
		if raw := strings.TrimSpace(r.URL.Query().Get("entity")); raw != "" {
			entity, err := enums.ParseAuditEntity(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity filter"))
				return
			}
			filters.Entity = &entity
		}
		if filters.EntityID, err = validators.ParseQueryUUID(r, "entity_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.ActorID, err = validators.ParseQueryUUID(r, "actor_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
			since, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid since filter"))
				return
			}
			filters.Since = &since
		}

		items, next, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"audit_logs":  items,
			"next_cursor": encodeCursor(next),
		})
	}
}
