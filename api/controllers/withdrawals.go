package controllers

import (
	"net/http"

	"github.com/crowdspark/crowdspark-backend/api/responses"
	"github.com/crowdspark/crowdspark-backend/api/validators"
	"github.com/crowdspark/crowdspark-backend/internal/withdrawals"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/logger"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

// WithdrawalRequest opens a withdrawal against a campaign's raised funds.
func WithdrawalRequest(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "withdrawals service unavailable"))
			return
		}

		actorID, err := parseActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input withdrawals.RequestInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.RequesterID = actorID

		withdrawal, err := svc.Request(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, withdrawal)
	}
}

// WithdrawalList returns a cursor page of withdrawal requests.
func WithdrawalList(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "withdrawals service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters withdrawals.ListFilters
		if filters.CampaignID, err = validators.ParseQueryUUID(r, "campaign_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.Status, err = parseStatusParam(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"withdrawals": items,
			"next_cursor": encodeCursor(next),
		})
	}
}

func encodeCursor(cursor *pagination.Cursor) string {
	if cursor == nil {
		return ""
	}
	return pagination.EncodeCursor(*cursor)
}
