package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/api/responses"
	"github.com/crowdspark/crowdspark-backend/api/validators"
	"github.com/crowdspark/crowdspark-backend/internal/clubs"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/logger"
)

type clubVerificationRequest struct {
	ClubID uuid.UUID `json:"club_id" validate:"required"`
	Notes  *string   `json:"notes"`
}

type clubReferralRequest struct {
	ClubID    uuid.UUID `json:"club_id" validate:"required"`
	NomineeID uuid.UUID `json:"nominee_id" validate:"required"`
	Notes     *string   `json:"notes"`
}

// ClubGet returns a single club profile.
func ClubGet(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "clubs service unavailable"))
			return
		}

		clubID, err := parsePathUUID(r, "clubId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		club, err := svc.FindClub(r.Context(), clubID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, club)
	}
}

// ClubVerificationSubmit files a club for admin verification.
func ClubVerificationSubmit(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "clubs service unavailable"))
			return
		}

		actorID, err := parseActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clubVerificationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		verification, err := svc.SubmitVerification(r.Context(), payload.ClubID, actorID, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, verification)
	}
}

// ClubReferralSubmit nominates a new president for a club.
func ClubReferralSubmit(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "clubs service unavailable"))
			return
		}

		actorID, err := parseActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clubReferralRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		referral, err := svc.SubmitReferral(r.Context(), payload.ClubID, payload.NomineeID, actorID, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, referral)
	}
}
