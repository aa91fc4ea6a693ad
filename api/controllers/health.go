package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/crowdspark/crowdspark-backend/api/responses"
	"github.com/crowdspark/crowdspark-backend/pkg/config"
	"github.com/crowdspark/crowdspark-backend/pkg/db"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/logger"
	pkgredis "github.com/crowdspark/crowdspark-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CrowdSpark-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the hard dependencies so load balancers stop routing
// before the service can actually serve.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CrowdSpark-Env", cfg.App.Env)

		var err error
		if dbP != nil {
			err = multierr.Append(err, dbP.Ping(r.Context()))
		}
		if redisP != nil {
			err = multierr.Append(err, redisP.Ping(r.Context()))
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "readiness check"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
