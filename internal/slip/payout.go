// Package slip implements the bet slip engine: it owns the selections, the
// stake and the derived potential payout for one client session, and merges
// live match updates into the match book it displays against.
package slip

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/betslip/internal/models"
)

// ComputePotentialWin returns the payout for the given selections and stake:
// stake multiplied by the product of all selection odds, rounded to 2 decimal
// places (round half up). An empty selection set pays 0 regardless of stake;
// the empty-product-is-1 convention must never leak through as "1x stake".
func ComputePotentialWin(selections []models.BetSelection, stake float64) float64 {
	if len(selections) == 0 {
		return 0
	}

	combined := decimal.NewFromInt(1)
	for _, sel := range selections {
		combined = combined.Mul(decimal.NewFromFloat(sel.Odds))
	}

	win := combined.Mul(decimal.NewFromFloat(stake)).Round(2)
	out, _ := win.Float64()
	return out
}

// CombinedOdds returns the parlay price for the given selections rounded to
// 2 decimal places, or 0 for an empty set.
func CombinedOdds(selections []models.BetSelection) float64 {
	if len(selections) == 0 {
		return 0
	}

	combined := decimal.NewFromInt(1)
	for _, sel := range selections {
		combined = combined.Mul(decimal.NewFromFloat(sel.Odds))
	}

	out, _ := combined.Round(2).Float64()
	return out
}
