package controllers

import (
	"net/http"
	"time"

	"github.com/thedivyam/noon-sde3/api/responses"
	"github.com/thedivyam/noon-sde3/api/validators"
	"github.com/thedivyam/noon-sde3/internal/catalog"
	"github.com/thedivyam/noon-sde3/pkg/logger"
)

type searcher interface {
	SetQuery(query string)
	Refresh()
	State() catalog.State
}

type searchRequest struct {
	Query string `json:"query" validate:"max=100"`
}

type searchView struct {
	Query     string         `json:"query"`
	Loading   bool           `json:"loading"`
	Results   []catalog.Item `json:"results"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

func newSearchView(state catalog.State) searchView {
	view := searchView{
		Query:   state.Query,
		Loading: state.Loading,
		Results: make([]catalog.Item, 0, len(state.Results)),
		Error:   state.Error,
	}
	for _, ship := range state.Results {
		view.Results = append(view.Results, catalog.NewItem(ship))
	}
	if !state.UpdatedAt.IsZero() {
		updated := state.UpdatedAt
		view.UpdatedAt = &updated
	}
	return view
}

func SearchState(s searcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newSearchView(s.State()))
	}
}

// SearchUpdate records the query; the fetch happens once the debounce elapses,
// so the response reflects the pending state.
func SearchUpdate(s searcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload searchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		s.SetQuery(payload.Query)
		responses.WriteSuccessStatus(w, http.StatusAccepted, newSearchView(s.State()))
	}
}

func SearchRefresh(s searcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Refresh()
		responses.WriteSuccessStatus(w, http.StatusAccepted, newSearchView(s.State()))
	}
}
