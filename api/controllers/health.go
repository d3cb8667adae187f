package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/responses"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/config"
	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

const (
	envHeader    = "X-SwiftCart-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is a dependency checked by the readiness endpoint.
type Pinger interface {
	Ping(context.Context) error
}

// HealthCheck names one readiness dependency.
type HealthCheck struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every check; the first failure makes the service unready.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status := map[string]string{"status": "ready"}
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			if err := check.Pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.Name+" unavailable"))
				return
			}
			status[check.Name] = "ok"
		}
		responses.WriteSuccess(w, status)
	}
}
