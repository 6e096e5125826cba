package cart

import (
	"github.com/thedivyam/noon-sde3/internal/pricing"
	"github.com/thedivyam/noon-sde3/pkg/swapi"
)

// Line is a starship with the quantity held in the cart. It serialises as the
// starship's own fields plus "quantity", which is the persisted format.
type Line struct {
	swapi.Starship
	Quantity int `json:"quantity"`
}

func (l Line) priced() pricing.Line {
	return pricing.Line{Item: l.Starship, Quantity: l.Quantity}
}

// Outcome tags the effect a cart operation had.
type Outcome string

const (
	OutcomeAdded       Outcome = "added"
	OutcomeCapped      Outcome = "capped"
	OutcomeDecremented Outcome = "decremented"
	OutcomeRemoved     Outcome = "removed"
	OutcomeAbsent      Outcome = "absent"
	OutcomeCleared     Outcome = "cleared"
)

// AddResult reports whether an add incremented the line or hit the ceiling.
// Line is the line as it stands after the call.
type AddResult struct {
	Outcome Outcome `json:"outcome"`
	Line    Line    `json:"line"`
}

// Changed reports whether the quantity moved.
func (r AddResult) Changed() bool { return r.Outcome == OutcomeAdded }

// RemoveResult reports how a remove affected the line. Quantity is what remains.
type RemoveResult struct {
	Outcome  Outcome `json:"outcome"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
}

// Changed reports whether the cart was modified.
func (r RemoveResult) Changed() bool { return r.Outcome != OutcomeAbsent }
