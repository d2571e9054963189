package models

import (
	"fmt"
	"time"
)

// MatchPhase represents the lifecycle phase of a match
type MatchPhase string

const (
	MatchPhaseUpcoming MatchPhase = "upcoming"
	MatchPhaseLive     MatchPhase = "live"
	MatchPhaseFinished MatchPhase = "finished"
)

// Odds holds the three-way outcome prices for a match
type Odds struct {
	Home float64 `json:"home" validate:"gt=0"`
	Draw float64 `json:"draw" validate:"gt=0"`
	Away float64 `json:"away" validate:"gt=0"`
}

// Score holds the current goal counts for a live match
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// SideCount is a generic home/away pair used inside match statistics
type SideCount struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Statistics holds live in-play statistics, present only while a match is live
type Statistics struct {
	Possession SideCount `json:"possession"`
	Shots      SideCount `json:"shots"`
}

// Match represents a bettable sporting event delivered by the match feed
type Match struct {
	ID         int64       `json:"id" validate:"required"`
	HomeTeam   string      `json:"homeTeam" validate:"required"`
	AwayTeam   string      `json:"awayTeam" validate:"required"`
	League     string      `json:"league"`
	StartTime  time.Time   `json:"startTime"`
	IsLive     bool        `json:"isLive"`
	Time       string      `json:"time,omitempty"` // match clock, e.g. "67'"
	Odds       Odds        `json:"odds"`
	Score      *Score      `json:"score,omitempty"`
	Statistics *Statistics `json:"statistics,omitempty"`
}

// Label returns the display label for the match ("Home vs Away")
func (m *Match) Label() string {
	return fmt.Sprintf("%s vs %s", m.HomeTeam, m.AwayTeam)
}

// Phase returns the current match phase
func (m *Match) Phase() MatchPhase {
	if m.IsLive {
		return MatchPhaseLive
	}
	return MatchPhaseUpcoming
}

// OddsFor returns the price for the given outcome.
// Returns ErrInvalidBetType for unrecognised outcomes and ErrUnknownOdds
// when the feed delivered no usable price for the outcome.
func (m *Match) OddsFor(betType BetType) (float64, error) {
	var price float64
	switch betType {
	case BetTypeHome:
		price = m.Odds.Home
	case BetTypeDraw:
		price = m.Odds.Draw
	case BetTypeAway:
		price = m.Odds.Away
	default:
		return 0, ErrInvalidBetType
	}

	if price <= 0 {
		return 0, ErrUnknownOdds
	}
	return price, nil
}

// LiveUpdate is a partial update for a single match pushed over the live
// channel. Nil fields leave the corresponding match fields unchanged.
type LiveUpdate struct {
	MatchID    int64       `json:"id"`
	Score      *Score      `json:"score,omitempty"`
	Statistics *Statistics `json:"statistics,omitempty"`
	Time       *string     `json:"time,omitempty"`
}
