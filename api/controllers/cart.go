package controllers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/thedivyam/noon-sde3/api/responses"
	"github.com/thedivyam/noon-sde3/api/validators"
	"github.com/thedivyam/noon-sde3/internal/cart"
	"github.com/thedivyam/noon-sde3/internal/pricing"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/logger"
	"github.com/thedivyam/noon-sde3/pkg/swapi"
)

type cartStore interface {
	Loading() bool
	Lines() []cart.Line
	SummaryOf(lines []cart.Line) pricing.OrderSummary
	MaxQuantity() int
	Add(ctx context.Context, item swapi.Starship) cart.AddResult
	Remove(ctx context.Context, name string) cart.RemoveResult
	Clear(ctx context.Context, notify bool)
}

type addItemRequest struct {
	Item swapi.Starship `json:"item"`
}

type cartLineView struct {
	swapi.Starship
	Quantity       int    `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	LineTotal      string `json:"line_total"`
	PriceEstimated bool   `json:"price_estimated"`
}

type summaryView struct {
	Subtotal  string `json:"subtotal"`
	Tax       string `json:"tax"`
	Total     string `json:"total"`
	ItemCount int    `json:"item_count"`
	Currency  string `json:"currency"`
}

type cartView struct {
	Lines       []cartLineView `json:"lines"`
	Summary     summaryView    `json:"summary"`
	Loading     bool           `json:"loading"`
	MaxQuantity int            `json:"max_quantity"`
}

type addItemView struct {
	Outcome cart.Outcome `json:"outcome"`
	Line    cartLineView `json:"line"`
	Cart    cartView     `json:"cart"`
}

type removeItemView struct {
	Outcome  cart.Outcome `json:"outcome"`
	Name     string       `json:"name"`
	Quantity int          `json:"quantity"`
	Cart     cartView     `json:"cart"`
}

func newCartLineView(line cart.Line) cartLineView {
	priced := pricing.Line{Item: line.Starship, Quantity: line.Quantity}
	return cartLineView{
		Starship:       line.Starship,
		Quantity:       line.Quantity,
		UnitPrice:      pricing.FormatAmount(pricing.UnitPrice(line.Starship)),
		LineTotal:      pricing.FormatAmount(pricing.LineTotal(priced)),
		PriceEstimated: pricing.IsEstimated(line.Starship),
	}
}

func newSummaryView(summary pricing.OrderSummary, currency string) summaryView {
	return summaryView{
		Subtotal:  pricing.FormatAmount(summary.Subtotal),
		Tax:       pricing.FormatAmount(summary.Tax),
		Total:     pricing.FormatAmount(summary.Total),
		ItemCount: summary.ItemCount,
		Currency:  currency,
	}
}

func newCartView(store cartStore, currency string) cartView {
	lines := store.Lines()
	view := cartView{
		Lines:       make([]cartLineView, 0, len(lines)),
		Summary:     newSummaryView(store.SummaryOf(lines), currency),
		Loading:     store.Loading(),
		MaxQuantity: store.MaxQuantity(),
	}
	for _, line := range lines {
		view.Lines = append(view.Lines, newCartLineView(line))
	}
	return view
}

func CartFetch(store cartStore, currency string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartView(store, currency))
	}
}

// CartAddItem adds one unit. Hitting the per-line ceiling is not an error: the
// response carries outcome "capped" and the unchanged line.
func CartAddItem(store cartStore, currency string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Item.Name = strings.TrimSpace(payload.Item.Name)
		if payload.Item.Name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"item.name": "is required"}))
			return
		}

		result := store.Add(r.Context(), payload.Item)
		responses.WriteSuccess(w, addItemView{
			Outcome: result.Outcome,
			Line:    newCartLineView(result.Line),
			Cart:    newCartView(store, currency),
		})
	}
}

// CartRemoveItem removes one unit of the named item. Removing an item that is
// not in the cart succeeds with outcome "absent".
func CartRemoveItem(store cartStore, currency string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := itemName(r)
		if err != nil || strings.TrimSpace(name) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid item name"))
			return
		}

		result := store.Remove(r.Context(), name)
		responses.WriteSuccess(w, removeItemView{
			Outcome:  result.Outcome,
			Name:     result.Name,
			Quantity: result.Quantity,
			Cart:     newCartView(store, currency),
		})
	}
}

// itemName reads the {name} segment. chi routes on RawPath when the request
// carries one, leaving the segment escaped.
func itemName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

// CartClear empties the cart; ?notify=false suppresses the toast.
func CartClear(store cartStore, currency string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notify := true
		if raw := strings.TrimSpace(r.URL.Query().Get("notify")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notify value"))
				return
			}
			notify = value
		}

		store.Clear(r.Context(), notify)
		responses.WriteSuccess(w, newCartView(store, currency))
	}
}
