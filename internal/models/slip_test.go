package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBetSlip(t *testing.T) {
	slip := NewBetSlip()
	assert.Empty(t, slip.Selections)
	assert.Equal(t, DefaultStake, slip.Stake)
	assert.Equal(t, 0.0, slip.PotentialWin)
	assert.Equal(t, SlipStateEmpty, slip.State())
}

func TestSlipState(t *testing.T) {
	slip := NewBetSlip()
	assert.Equal(t, SlipStateEmpty, slip.State())

	slip.Selections = append(slip.Selections, BetSelection{ID: "1-home", Odds: 1.9})
	assert.Equal(t, SlipStateBuilding, slip.State())
}

func TestHasSelection(t *testing.T) {
	slip := NewBetSlip()
	slip.Selections = append(slip.Selections, BetSelection{ID: "1-home", Odds: 1.9})

	assert.True(t, slip.HasSelection("1-home"))
	assert.False(t, slip.HasSelection("1-draw"))
	assert.False(t, slip.HasSelection(""))
}

func TestSlipCombinedOdds(t *testing.T) {
	slip := NewBetSlip()
	assert.Equal(t, 0.0, slip.CombinedOdds())

	slip.Selections = []BetSelection{{ID: "1-home", Odds: 2.0}, {ID: "2-away", Odds: 3.0}}
	assert.Equal(t, 6.0, slip.CombinedOdds())
}

func TestCloneIsDeep(t *testing.T) {
	slip := NewBetSlip()
	slip.Selections = []BetSelection{{ID: "1-home", Odds: 1.9}}
	slip.Stake = 50

	clone := slip.Clone()
	require.Len(t, clone.Selections, 1)

	clone.Selections[0].Odds = 9.9
	clone.Stake = 1

	assert.Equal(t, 1.9, slip.Selections[0].Odds)
	assert.Equal(t, 50.0, slip.Stake)
}
