package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thedivyam/noon-sde3/internal/cart"
	"github.com/thedivyam/noon-sde3/internal/notifications"
	"github.com/thedivyam/noon-sde3/internal/pricing"
	"github.com/thedivyam/noon-sde3/pkg/enums"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/logger"
	"github.com/thedivyam/noon-sde3/pkg/metrics"
)

type cartStore interface {
	Loading() bool
	Drain(ctx context.Context) []cart.Line
	SummaryOf(lines []cart.Line) pricing.OrderSummary
}

// Service places (mocked) orders for the current cart.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Confirmation, error)
}

// PlaceOrderInput captures the checkout choices. An empty payment method
// selects Credit Card.
type PlaceOrderInput struct {
	PaymentMethod enums.PaymentMethod
}

// Confirmation is returned to the caller once the cart has been emptied. It is
// not persisted anywhere.
type Confirmation struct {
	Number        uuid.UUID            `json:"number"`
	PaymentMethod enums.PaymentMethod  `json:"payment_method"`
	Summary       pricing.OrderSummary `json:"summary"`
	Lines         []cart.Line          `json:"lines"`
	PlacedAt      time.Time            `json:"placed_at"`
}

type service struct {
	cart     cartStore
	notifier notifications.Notifier
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
	currency string
	now      func() time.Time
}

// NewService builds the checkout service.
func NewService(store cartStore, notifier notifications.Notifier, logg *logger.Logger, m *metrics.StorefrontMetrics, currency string) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if currency == "" {
		currency = pricing.DefaultCurrency
	}
	return &service{
		cart:     store,
		notifier: notifier,
		logg:     logg,
		metrics:  m,
		currency: currency,
		now:      time.Now,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Confirmation, error) {
	method := input.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodCreditCard
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment method %q", method))
	}
	if s.cart.Loading() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is still loading")
	}

	lines := s.cart.Drain(ctx)
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	confirmation := &Confirmation{
		Number:        uuid.New(),
		PaymentMethod: method,
		Summary:       s.cart.SummaryOf(lines),
		Lines:         lines,
		PlacedAt:      s.now().UTC(),
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_number":   confirmation.Number.String(),
		"payment_method": method.String(),
		"item_count":     confirmation.Summary.ItemCount,
		"total":          pricing.FormatAmount(confirmation.Summary.Total),
	})
	s.logg.Info(ctx, "order placed")
	s.metrics.IncOrderPlaced()

	if s.notifier != nil {
		s.notifier.Notify(ctx, notifications.NewToast(
			enums.ToastKindSuccess,
			"Order Placed Successfully! 🎉",
			fmt.Sprintf("Your order of %s has been confirmed", pricing.FormatCurrency(confirmation.Summary.Total, s.currency)),
		))
	}
	return confirmation, nil
}
