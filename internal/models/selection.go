package models

import (
	"fmt"
	"time"
)

// BetType represents a three-way match outcome
type BetType string

const (
	BetTypeHome BetType = "home"
	BetTypeDraw BetType = "draw"
	BetTypeAway BetType = "away"
)

// ParseBetType validates and converts an outcome key
func ParseBetType(s string) (BetType, error) {
	switch BetType(s) {
	case BetTypeHome, BetTypeDraw, BetTypeAway:
		return BetType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBetType, s)
	}
}

// SelectionID builds the deterministic composite identifier for a selection.
// One selection per (match, outcome) pair can exist in a slip, so toggling
// the same outcome twice removes it again.
func SelectionID(matchID int64, betType BetType) string {
	return fmt.Sprintf("%d-%s", matchID, betType)
}

// BetSelection is one leg of a combined bet. Team names, bet description and
// odds are snapshotted at selection time; later changes to the underlying
// match never alter a selection already in the slip.
type BetSelection struct {
	ID        string    `json:"id" validate:"required"`
	MatchID   int64     `json:"matchId" validate:"required"`
	Match     string    `json:"match" validate:"required"`
	BetType   BetType   `json:"betType" validate:"required,oneof=home draw away"`
	BetName   string    `json:"betName" validate:"required"`
	Odds      float64   `json:"odds" validate:"gt=0"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewBetSelection snapshots a selection from the match's current state
func NewBetSelection(match *Match, betType BetType) (BetSelection, error) {
	odds, err := match.OddsFor(betType)
	if err != nil {
		return BetSelection{}, err
	}

	return BetSelection{
		ID:        SelectionID(match.ID, betType),
		MatchID:   match.ID,
		Match:     match.Label(),
		BetType:   betType,
		BetName:   betName(match, betType),
		Odds:      odds,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// betName builds the human readable description shown on the slip
func betName(match *Match, betType BetType) string {
	switch betType {
	case BetTypeHome:
		return fmt.Sprintf("%s wins", match.HomeTeam)
	case BetTypeAway:
		return fmt.Sprintf("%s wins", match.AwayTeam)
	default:
		return "Draw"
	}
}
