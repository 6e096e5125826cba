package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thedivyam/noon-sde3/api/responses"
	"github.com/thedivyam/noon-sde3/api/validators"
	"github.com/thedivyam/noon-sde3/internal/checkout"
	"github.com/thedivyam/noon-sde3/pkg/enums"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/logger"
)

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type confirmationView struct {
	Number        uuid.UUID           `json:"number"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Lines         []cartLineView      `json:"lines"`
	Summary       summaryView         `json:"summary"`
	PlacedAt      time.Time           `json:"placed_at"`
}

func Checkout(svc checkout.Service, currency string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkout.PlaceOrderInput{}
		if raw := strings.TrimSpace(payload.PaymentMethod); raw != "" {
			method, err := enums.ParsePaymentMethod(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method").
					WithDetails(map[string]string{"payment_method": "must be Credit Card or Cash on Delivery"}))
				return
			}
			input.PaymentMethod = method
		}

		confirmation, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view := confirmationView{
			Number:        confirmation.Number,
			PaymentMethod: confirmation.PaymentMethod,
			Lines:         make([]cartLineView, 0, len(confirmation.Lines)),
			Summary:       newSummaryView(confirmation.Summary, currency),
			PlacedAt:      confirmation.PlacedAt,
		}
		for _, line := range confirmation.Lines {
			view.Lines = append(view.Lines, newCartLineView(line))
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}
