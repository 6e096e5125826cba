package middleware

import (
	"net/http"

	"github.com/thedivyam/noon-sde3/api/responses"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/logger"
)

// LoadingReporter is satisfied by stores that rehydrate asynchronously.
type LoadingReporter interface {
	Loading() bool
}

// RequireLoaded rejects requests with STATE_CONFLICT until the store has
// finished rehydrating, so writes never race the initial read.
func RequireLoaded(store LoadingReporter, name string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store != nil && store.Loading() {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeStateConflict, name+" is still loading").
						WithDetails(map[string]any{"store": name}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
