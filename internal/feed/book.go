// Package feed provides the match feed client, the live update stream and the
// in-memory match book the bet slip engine reads from.
package feed

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/betslip/internal/metrics"
	"github.com/yourusername/betslip/internal/models"
)

// MatchBook holds the currently displayed match list. The feed client replaces
// the list on refresh and the stream goroutine merges partial live updates into
// it, so all access is mutex guarded.
type MatchBook struct {
	mu      sync.RWMutex
	order   []int64
	matches map[int64]*models.Match
	logger  *logrus.Logger
}

// NewMatchBook creates an empty match book
func NewMatchBook(logger *logrus.Logger) *MatchBook {
	return &MatchBook{
		order:   make([]int64, 0),
		matches: make(map[int64]*models.Match),
		logger:  logger,
	}
}

// Replace swaps in a freshly fetched match list. Feed ordering is preserved
// for display; duplicate IDs keep the first occurrence.
func (b *MatchBook) Replace(matches []models.Match) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.order = b.order[:0]
	b.matches = make(map[int64]*models.Match, len(matches))

	for i := range matches {
		m := matches[i]
		if _, exists := b.matches[m.ID]; exists {
			continue
		}
		b.order = append(b.order, m.ID)
		b.matches[m.ID] = &m
	}
}

// Get returns a copy of the match with the given ID
func (b *MatchBook) Get(id int64) (models.Match, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	m, ok := b.matches[id]
	if !ok {
		return models.Match{}, false
	}
	return copyMatch(m), true
}

// Snapshot returns ordered copies of all matches currently in the book
func (b *MatchBook) Snapshot() []models.Match {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Match, 0, len(b.order))
	for _, id := range b.order {
		if m, ok := b.matches[id]; ok {
			out = append(out, copyMatch(m))
		}
	}
	return out
}

// Len returns the number of matches in the book
func (b *MatchBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.matches)
}

// Apply merges a partial live update into the match it targets. Fields absent
// from the update leave the match untouched. The feed only sends a score for
// matches in play, so a score also flips the match to live. Updates for
// matches that have rotated out of the list are dropped; that is expected,
// not an error. Applying the same update twice yields the same match state.
func (b *MatchBook) Apply(update models.LiveUpdate) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.matches[update.MatchID]
	if !ok {
		if b.logger != nil {
			b.logger.WithField("match_id", update.MatchID).Debug("Dropping live update for unknown match")
		}
		metrics.RecordLiveUpdate(false)
		return false
	}

	if update.Score != nil {
		score := *update.Score
		m.Score = &score
		m.IsLive = true
	}
	if update.Statistics != nil {
		stats := *update.Statistics
		m.Statistics = &stats
	}
	if update.Time != nil {
		m.Time = *update.Time
	}

	metrics.RecordLiveUpdate(true)
	return true
}

// copyMatch deep-copies a match so callers cannot mutate book state
func copyMatch(m *models.Match) models.Match {
	out := *m
	if m.Score != nil {
		score := *m.Score
		out.Score = &score
	}
	if m.Statistics != nil {
		stats := *m.Statistics
		out.Statistics = &stats
	}
	return out
}
