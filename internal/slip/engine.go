package slip

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/betslip/internal/feed"
	"github.com/yourusername/betslip/internal/metrics"
	"github.com/yourusername/betslip/internal/models"
)

// ToggleAction tells the caller whether a toggle added or removed a selection,
// so the hosting view can open the slip panel or notify accordingly.
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
)

// Submitter hands a finalized slip to the wagering endpoint
type Submitter interface {
	PlaceSlip(ctx context.Context, slip models.BetSlip) (*models.Receipt, error)
}

// Authenticator reports whether the owning session is logged in
type Authenticator interface {
	IsAuthenticated() bool
}

// Engine owns the bet slip for one client session. User intents are applied
// synchronously and atomically under the engine lock; live updates arrive from
// the stream goroutine and only ever touch the match book, never the slip.
// Selections keep their snapshotted odds and labels whatever the underlying
// match does afterwards.
type Engine struct {
	book     *feed.MatchBook
	wagering Submitter
	auth     Authenticator
	logger   *logrus.Logger

	mu       sync.Mutex
	slip     models.BetSlip
	inFlight bool
}

// NewEngine creates an engine with an empty slip at the default stake
func NewEngine(book *feed.MatchBook, wagering Submitter, auth Authenticator, logger *logrus.Logger) *Engine {
	return &Engine{
		book:     book,
		wagering: wagering,
		auth:     auth,
		logger:   logger,
		slip:     models.NewBetSlip(),
	}
}

// Slip returns a snapshot of the current slip
func (e *Engine) Slip() models.BetSlip {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slip.Clone()
}

// State returns the slip lifecycle state
func (e *Engine) State() models.SlipState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return models.SlipStateSubmitting
	}
	return e.slip.State()
}

// ToggleSelection adds the (match, outcome) selection to the slip, or removes
// it if it is already there. The selection snapshots the match's current team
// names and odds; re-toggling restores the slip to its exact prior state.
func (e *Engine) ToggleSelection(matchID int64, betType models.BetType) (models.BetSlip, ToggleAction, error) {
	if _, err := models.ParseBetType(string(betType)); err != nil {
		return e.Slip(), "", err
	}

	match, ok := e.book.Get(matchID)
	if !ok {
		return e.Slip(), "", fmt.Errorf("match %d: %w", matchID, models.ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id := models.SelectionID(matchID, betType)
	for i, sel := range e.slip.Selections {
		if sel.ID == id {
			e.slip.Selections = append(e.slip.Selections[:i], e.slip.Selections[i+1:]...)
			e.recompute()
			metrics.RecordToggle(false)

			e.logger.WithFields(logrus.Fields{
				"selection_id":  id,
				"match_id":      matchID,
				"potential_win": e.slip.PotentialWin,
			}).Debug("Selection toggled off")

			return e.slip.Clone(), ToggleRemoved, nil
		}
	}

	sel, err := models.NewBetSelection(&match, betType)
	if err != nil {
		return e.slip.Clone(), "", err
	}

	e.slip.Selections = append(e.slip.Selections, sel)
	e.recompute()
	metrics.RecordToggle(true)

	e.logger.WithFields(logrus.Fields{
		"selection_id":  id,
		"match_id":      matchID,
		"bet_type":      betType,
		"odds":          sel.Odds,
		"potential_win": e.slip.PotentialWin,
	}).Debug("Selection toggled on")

	return e.slip.Clone(), ToggleAdded, nil
}

// RemoveSelection removes the selection with the given composite ID.
// Removing an absent selection is a no-op, not an error.
func (e *Engine) RemoveSelection(id string) models.BetSlip {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, sel := range e.slip.Selections {
		if sel.ID == id {
			e.slip.Selections = append(e.slip.Selections[:i], e.slip.Selections[i+1:]...)
			e.recompute()
			metrics.RecordToggle(false)
			break
		}
	}
	return e.slip.Clone()
}

// SetStake sets the stake, clamping negative input to 0. A money field never
// rejects input, it floors it.
func (e *Engine) SetStake(amount float64) models.BetSlip {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount < 0 {
		amount = 0
	}
	e.slip.Stake = amount
	e.recompute()
	return e.slip.Clone()
}

// Clear empties the slip and resets the stake to the default baseline
func (e *Engine) Clear() models.BetSlip {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.slip = models.NewBetSlip()
	return e.slip.Clone()
}

// ApplyLiveUpdate merges a pushed score/statistics update into the match book.
// It is the sole ingestion point for live updates, whatever transport delivers
// them. The slip is never touched: existing selections keep their snapshotted
// odds and labels. Updates for unknown matches are dropped silently.
func (e *Engine) ApplyLiveUpdate(update models.LiveUpdate) {
	e.book.Apply(update)
}

// Submit validates the slip and hands it to the wagering endpoint. All local
// preconditions are checked before any network call; a second Submit while one
// is outstanding is rejected with ErrSubmissionInProgress rather than queued.
// On success the slip resets to empty; on collaborator failure the selections
// are preserved so the user can retry.
func (e *Engine) Submit(ctx context.Context) (*models.Receipt, error) {
	e.mu.Lock()

	if e.auth == nil || !e.auth.IsAuthenticated() {
		e.mu.Unlock()
		metrics.RecordRejection("not_authenticated")
		return nil, models.ErrNotAuthenticated
	}
	if len(e.slip.Selections) == 0 {
		e.mu.Unlock()
		metrics.RecordRejection("empty_slip")
		return nil, models.ErrEmptySlip
	}
	if e.slip.Stake <= 0 {
		e.mu.Unlock()
		metrics.RecordRejection("invalid_stake")
		return nil, models.ErrInvalidStake
	}
	if e.inFlight {
		e.mu.Unlock()
		metrics.RecordRejection("in_progress")
		return nil, models.ErrSubmissionInProgress
	}

	e.inFlight = true
	snapshot := e.slip.Clone()
	e.mu.Unlock()

	// The network call runs outside the lock so the user can still remove
	// selections or clear the slip while the submission is in flight.
	start := time.Now()
	receipt, err := e.wagering.PlaceSlip(ctx, snapshot)

	e.mu.Lock()
	e.inFlight = false
	if err != nil {
		e.mu.Unlock()
		metrics.RecordRejection("wagering")

		e.logger.WithFields(logrus.Fields{
			"selections": len(snapshot.Selections),
			"stake":      snapshot.Stake,
			"error":      err.Error(),
		}).Warn("Slip submission rejected by wagering endpoint")

		return nil, fmt.Errorf("slip submission failed: %w", err)
	}

	e.slip = models.NewBetSlip()
	e.mu.Unlock()

	metrics.RecordSubmission(time.Since(start).Seconds())

	e.logger.WithFields(logrus.Fields{
		"receipt_id":    receipt.ID,
		"ticket_ref":    receipt.TicketRef,
		"selections":    len(snapshot.Selections),
		"stake":         snapshot.Stake,
		"potential_win": snapshot.PotentialWin,
	}).Info("Slip submitted successfully")

	return receipt, nil
}

// recompute refreshes the derived payout. Callers must hold the lock.
func (e *Engine) recompute() {
	e.slip.PotentialWin = ComputePotentialWin(e.slip.Selections, e.slip.Stake)
}
