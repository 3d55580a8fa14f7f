package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/mtgtracker/listing-backend/api/responses"
	"github.com/mtgtracker/listing-backend/pkg/config"
	pkgerrors "github.com/mtgtracker/listing-backend/pkg/errors"
	"github.com/mtgtracker/listing-backend/pkg/logger"
)

const envHeader = "X-MTGTracker-Env"

type HealthPinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every wired dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]HealthPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failCtx := ctx
				if logg != nil {
					failCtx = logg.WithField(ctx, "dependency", name)
				}
				responses.WriteError(failCtx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
