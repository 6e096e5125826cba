package controllers

import (
	"net/http"
	"strings"

	"github.com/thedivyam/noon-sde3/api/responses"
	"github.com/thedivyam/noon-sde3/api/validators"
	"github.com/thedivyam/noon-sde3/internal/catalog"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/logger"
	"github.com/thedivyam/noon-sde3/pkg/pagination"
)

const maxSearchLength = 100

// ListStarships fetches the catalog on every call; there is no debounce or
// retry here, the caller refreshes when it wants fresh data.
func ListStarships(svc catalog.Service, defaultLimit int, logg *logger.Logger) http.HandlerFunc {
	if defaultLimit <= 0 {
		defaultLimit = pagination.DefaultLimit
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := catalog.ListParams{
			Search: validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLength),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
