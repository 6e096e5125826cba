package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/thedivyam/noon-sde3/pkg/swapi"
)

func TestPriceOfEstimatesUnknownCost(t *testing.T) {
	ship := &swapi.Starship{
		Name:          "Test fighter",
		CostInCredits: "unknown",
		Length:        "10",
		Crew:          "5",
		CargoCapacity: "100",
		StarshipClass: "Starfighter",
	}

	got := PriceOf(ship.CostInCredits, ship)
	want := decimal.NewFromInt(50000 + 10000 + 25000).Add(decimal.NewFromInt(10)).
		Mul(decimal.RequireFromString("1.5")).
		Div(CreditsPerUnit)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if !got.Equal(decimal.RequireFromString("127.515")) {
		t.Fatalf("expected 127.515, got %s", got)
	}
}

func TestPriceOfParsesListedCost(t *testing.T) {
	if got := PriceOf("1000", nil); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected 1, got %s", got)
	}
	if got := PriceOf("3500000", nil); !got.Equal(decimal.NewFromInt(3500)) {
		t.Fatalf("expected 3500, got %s", got)
	}
}

func TestPriceOfFallbacks(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		ship *swapi.Starship
	}{
		{name: "garbage", raw: "garbage-not-a-number"},
		{name: "garbage with ship", raw: "n/a", ship: &swapi.Starship{Length: "10"}},
		{name: "unknown without ship", raw: "unknown"},
		{name: "empty without ship", raw: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PriceOf(tc.raw, tc.ship); !got.Equal(FallbackAmount) {
				t.Fatalf("expected fallback %s, got %s", FallbackAmount, got)
			}
		})
	}
}

func TestEstimateCreditsClassRules(t *testing.T) {
	cases := []struct {
		class string
		want  string
	}{
		{class: "Starfighter", want: "75000"},
		{class: "assault fighter", want: "75000"},
		{class: "Star Cruiser", want: "100000"},
		{class: "Star Destroyer", want: "100000"},
		{class: "medium transport", want: "40000"},
		{class: "Light FREIGHTER", want: "40000"},
		{class: "yacht", want: "50000"},
		{class: "", want: "50000"},
		{class: "fighter transport", want: "75000"},
	}
	for _, tc := range cases {
		got := EstimateCredits(swapi.Starship{StarshipClass: tc.class})
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("class %q: expected %s, got %s", tc.class, tc.want, got)
		}
	}
}

func TestEstimateCreditsAttributeParsing(t *testing.T) {
	ship := swapi.Starship{
		Length:        "30-165",
		Crew:          "1,600",
		CargoCapacity: "unknown",
	}
	// 50000 + 30*1000 + 1600*5000
	want := decimal.NewFromInt(8080000)
	if got := EstimateCredits(ship); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	negative := swapi.Starship{Length: "-4", Crew: "0", CargoCapacity: "none"}
	if got := EstimateCredits(negative); !got.Equal(BaseCredits) {
		t.Fatalf("non-positive attributes must add nothing, got %s", got)
	}
}

func TestParseNumberLeadingPrefix(t *testing.T) {
	cases := map[string]string{
		"42":       "42",
		" 12.5 m ": "12.5",
		".5":       "0.5",
		"5.":       "5",
		"1e3":      "1000",
		"-7abc":    "-7",
		"+3":       "3",
	}
	for raw, want := range cases {
		got, ok := parseNumber(raw)
		if !ok {
			t.Fatalf("%q: expected a number", raw)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("%q: expected %s, got %s", raw, want, got)
		}
	}
	for _, raw := range []string{"", "unknown", "abc", "-", "."} {
		if _, ok := parseNumber(raw); ok {
			t.Fatalf("%q: expected no number", raw)
		}
	}
}

func TestUnitPriceAndIsEstimated(t *testing.T) {
	listed := swapi.Starship{Name: "X-wing", CostInCredits: "149999"}
	if IsEstimated(listed) {
		t.Fatal("listed cost must not be estimated")
	}
	if got := UnitPrice(listed); !got.Equal(decimal.RequireFromString("149.999")) {
		t.Fatalf("unexpected unit price %s", got)
	}

	unknown := swapi.Starship{Name: "Mystery", CostInCredits: "unknown"}
	if !IsEstimated(unknown) {
		t.Fatal("unknown cost must be estimated")
	}
	if got := UnitPrice(unknown); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected base estimate of 50, got %s", got)
	}
}
