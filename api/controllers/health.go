package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/sathwikmerugu45/E-Commerce-Website/api/responses"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/redis"
)

const (
	envHeader    = "X-ShopHub-Env"
	readyTimeout = 2 * time.Second
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and redis. Either failing marks the
// instance unready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "ok"}
		var failed error
		if err := ping(ctx, dbP); err != nil {
			checks["database"] = "unavailable"
			failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable")
		}
		if err := ping(ctx, redisP); err != nil {
			checks["redis"] = "unavailable"
			if failed == nil {
				failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable")
			}
		}
		if failed != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.As(failed).WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

type pinger interface {
	Ping(context.Context) error
}

func ping(ctx context.Context, p pinger) error {
	if p == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "dependency not configured")
	}
	return p.Ping(ctx)
}
