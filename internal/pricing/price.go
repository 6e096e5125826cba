package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/thedivyam/noon-sde3/pkg/swapi"
)

// UnknownCost is the SWAPI marker for a starship without a listed price.
const UnknownCost = "unknown"

var (
	// CreditsPerUnit converts galactic credits into the display currency.
	CreditsPerUnit = decimal.NewFromInt(1000)
	// FallbackAmount is charged when a cost cannot be parsed or estimated.
	FallbackAmount = decimal.NewFromInt(5)
	// BaseCredits seeds the attribute based estimate.
	BaseCredits = decimal.NewFromInt(50000)

	lengthCredits = decimal.NewFromInt(1000)
	crewCredits   = decimal.NewFromInt(5000)
	cargoCredits  = decimal.RequireFromString("0.1")
)

type classRule struct {
	keywords   []string
	multiplier decimal.Decimal
}

// Evaluated in order; the first rule whose keyword appears in the class wins.
var classRules = []classRule{
	{keywords: []string{"starfighter", "fighter"}, multiplier: decimal.RequireFromString("1.5")},
	{keywords: []string{"cruiser", "destroyer"}, multiplier: decimal.NewFromInt(2)},
	{keywords: []string{"transport", "freighter"}, multiplier: decimal.RequireFromString("0.8")},
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// PriceOf converts a raw credit cost into the display currency. A missing or
// "unknown" cost is estimated from the ship's attributes when ship is non-nil,
// otherwise FallbackAmount is returned. Unparseable costs also yield FallbackAmount.
func PriceOf(rawCost string, ship *swapi.Starship) decimal.Decimal {
	if rawCost == "" || rawCost == UnknownCost {
		if ship == nil {
			return FallbackAmount
		}
		return EstimateCredits(*ship).Div(CreditsPerUnit)
	}
	cost, ok := parseNumber(rawCost)
	if !ok {
		return FallbackAmount
	}
	return cost.Div(CreditsPerUnit)
}

// UnitPrice prices a starship using its own listed cost.
func UnitPrice(ship swapi.Starship) decimal.Decimal {
	return PriceOf(ship.CostInCredits, &ship)
}

// IsEstimated reports whether UnitPrice falls back to the attribute estimate.
func IsEstimated(ship swapi.Starship) bool {
	return ship.CostInCredits == "" || ship.CostInCredits == UnknownCost
}

// EstimateCredits derives a credit value from length, crew, cargo capacity and class.
func EstimateCredits(ship swapi.Starship) decimal.Decimal {
	credits := BaseCredits

	if length, ok := parseNumber(ship.Length); ok && length.IsPositive() {
		credits = credits.Add(length.Mul(lengthCredits))
	}
	if crew, ok := parseNumber(strings.ReplaceAll(ship.Crew, ",", "")); ok && crew.IsPositive() {
		credits = credits.Add(crew.Mul(crewCredits))
	}
	if cargo, ok := parseNumber(ship.CargoCapacity); ok && cargo.IsPositive() {
		credits = credits.Add(cargo.Mul(cargoCredits))
	}

	return credits.Mul(classMultiplier(ship.StarshipClass))
}

func classMultiplier(class string) decimal.Decimal {
	lowered := strings.ToLower(class)
	for _, rule := range classRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.multiplier
			}
		}
	}
	return decimal.NewFromInt(1)
}

// parseNumber reads the longest numeric prefix of value, so "30-165" parses as 30
// and "1.5 metric tons" as 1.5.
func parseNumber(value string) (decimal.Decimal, bool) {
	match := leadingNumber.FindString(strings.TrimSpace(value))
	if match == "" {
		return decimal.Zero, false
	}
	match = strings.TrimPrefix(match, "+")
	if strings.HasSuffix(match, ".") {
		match = strings.TrimSuffix(match, ".")
	}
	if strings.HasPrefix(match, ".") || strings.HasPrefix(match, "-.") {
		match = strings.Replace(match, ".", "0.", 1)
	}
	parsed, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}
	return parsed, true
}
