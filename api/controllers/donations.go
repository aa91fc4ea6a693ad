package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/api/middleware"
	"github.com/crowdspark/crowdspark-backend/api/responses"
	"github.com/crowdspark/crowdspark-backend/api/validators"
	"github.com/crowdspark/crowdspark-backend/internal/donations"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/logger"
)

// DonationCreateOrder opens a gateway order for a signed-in donor or a guest.
// When the caller is authenticated the donor identity comes from the token,
// never from the body.
func DonationCreateOrder(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		var input donations.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
			donorID, err := uuid.Parse(userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
				return
			}
			input.DonorID = &donorID
			input.GuestEmail = nil
			input.GuestPAN = nil
		}

		donation, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, donation)
	}
}

// DonationVerify handles the gateway success callback.
func DonationVerify(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		var input donations.ConfirmInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.ConfirmPayment(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, donation)
	}
}

// DonationFail handles the gateway failure callback.
func DonationFail(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		var input donations.FailInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.MarkFailed(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, donation)
	}
}
