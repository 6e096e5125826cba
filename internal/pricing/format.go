package pricing

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// NotAvailable is rendered for values that are not numbers.
	NotAvailable = "N/A"
	// DefaultCurrency labels display amounts.
	DefaultCurrency = "AED"
)

// FormatAmount renders value with two decimals. Decimals, integers, floats and
// numeric strings are accepted; anything else renders as NotAvailable.
func FormatAmount(value any) string {
	amount, ok := toDecimal(value)
	if !ok {
		return NotAvailable
	}
	return amount.StringFixed(2)
}

// FormatCurrency renders "12.50 AED".
func FormatCurrency(amount decimal.Decimal, currency string) string {
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}
	return FormatAmount(amount) + " " + currency
}

// TruncateText shortens text to maxLength runes followed by "...".
func TruncateText(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	return string([]rune(text)[:maxLength]) + "..."
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case int32:
		return decimal.NewFromInt(int64(v)), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(v), true
	case string:
		return parseNumber(v)
	default:
		return decimal.Zero, false
	}
}
