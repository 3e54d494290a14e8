package controllers

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/multierr"

	"github.com/layali-lounge/qrmenu-backend/api/responses"
	"github.com/layali-lounge/qrmenu-backend/pkg/config"
	pkgerrors "github.com/layali-lounge/qrmenu-backend/pkg/errors"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
)

// Pinger is the readiness probe surface of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QRMenu-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QRMenu-Env", cfg.App.Env)

		checks := []struct {
			name string
			p    Pinger
		}{
			{"db", dbP},
			{"redis", redisP},
		}

		var errs error
		failing := []string{}
		for _, check := range checks {
			if check.p == nil {
				continue
			}
			if err := check.p.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", check.name, err))
				failing = append(failing, check.name)
			}
		}
		if errs != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies unavailable").
					WithDetails(map[string]any{"dependencies": failing}))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
