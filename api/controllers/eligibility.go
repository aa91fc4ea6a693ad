package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/api/middleware"
	"github.com/crowdspark/crowdspark-backend/api/responses"
	"github.com/crowdspark/crowdspark-backend/internal/eligibility"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/logger"
)

// EligibilityMe reports how many proposals the caller's verified donations
// have unlocked.
func EligibilityMe(svc eligibility.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "eligibility service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		donorID, err := uuid.Parse(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		report, err := svc.ForDonor(r.Context(), donorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
