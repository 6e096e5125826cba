package controllers

import (
	"context"
	"net/http"

	"github.com/thedivyam/noon-sde3/api/middleware"
	"github.com/thedivyam/noon-sde3/api/responses"
	"github.com/thedivyam/noon-sde3/pkg/config"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/logger"
)

const envHeader = "X-Storefront-Env"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady is ready once local storage answers and the stores have
// finished rehydrating.
func HealthReady(cfg *config.Config, logg *logger.Logger, storage Pinger, stores ...middleware.LoadingReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if storage != nil {
			if err := storage.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "storage ping failed"))
				return
			}
		}
		for _, store := range stores {
			if store != nil && store.Loading() {
				responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
