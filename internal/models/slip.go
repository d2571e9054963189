package models

// DefaultStake is the baseline stake a fresh slip starts with
const DefaultStake = 100.0

// SlipState represents the lifecycle state of a bet slip
type SlipState string

const (
	SlipStateEmpty      SlipState = "empty"
	SlipStateBuilding   SlipState = "building"
	SlipStateSubmitting SlipState = "submitting"
)

// BetSlip is the user's current combined-bet cart. Selections keep insertion
// order and are unique by ID. PotentialWin is derived from the selections and
// stake and is never stored independently of its inputs.
type BetSlip struct {
	Selections   []BetSelection `json:"selections"`
	Stake        float64        `json:"stake" validate:"gte=0"`
	PotentialWin float64        `json:"potentialWin"`
}

// NewBetSlip creates an empty slip with the default stake baseline
func NewBetSlip() BetSlip {
	return BetSlip{
		Selections: []BetSelection{},
		Stake:      DefaultStake,
	}
}

// State returns the lifecycle state derived from the slip contents
func (s *BetSlip) State() SlipState {
	if len(s.Selections) == 0 {
		return SlipStateEmpty
	}
	return SlipStateBuilding
}

// HasSelection reports whether a selection with the given composite ID exists
func (s *BetSlip) HasSelection(id string) bool {
	for _, sel := range s.Selections {
		if sel.ID == id {
			return true
		}
	}
	return false
}

// CombinedOdds returns the product of all selection odds, or 0 for an empty
// slip. The empty-product-is-1 convention only applies to non-empty slips;
// an empty slip has no combined price at all.
func (s *BetSlip) CombinedOdds() float64 {
	if len(s.Selections) == 0 {
		return 0
	}
	combined := 1.0
	for _, sel := range s.Selections {
		combined *= sel.Odds
	}
	return combined
}

// Clone returns a deep copy so callers can hold a snapshot of the slip
// without racing the engine
func (s *BetSlip) Clone() BetSlip {
	out := *s
	out.Selections = make([]BetSelection, len(s.Selections))
	copy(out.Selections, s.Selections)
	return out
}
