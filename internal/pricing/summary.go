package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/thedivyam/noon-sde3/pkg/swapi"
)

// DefaultTaxRate is applied when callers do not configure their own rate.
var DefaultTaxRate = decimal.RequireFromString("0.05")

// Line is a priced quantity of one starship.
type Line struct {
	Item     swapi.Starship
	Quantity int
}

// OrderSummary is derived from the cart on every read and never stored.
type OrderSummary struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// LineTotal is the unit price multiplied by the quantity.
func LineTotal(line Line) decimal.Decimal {
	return UnitPrice(line.Item).Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// Subtotal sums the line totals.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(LineTotal(line))
	}
	return sum
}

// Tax returns subtotal * rate.
func Tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate)
}

// Total returns subtotal plus its tax.
func Total(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Add(Tax(subtotal, rate))
}

// Summarize derives subtotal, tax, total and item count for lines.
func Summarize(lines []Line, rate decimal.Decimal) OrderSummary {
	subtotal := Subtotal(lines)
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return OrderSummary{
		Subtotal:  subtotal,
		Tax:       Tax(subtotal, rate),
		Total:     Total(subtotal, rate),
		ItemCount: count,
	}
}
