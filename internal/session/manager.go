package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/betslip/internal/feed"
	"github.com/yourusername/betslip/internal/logger"
	"github.com/yourusername/betslip/internal/metrics"
	"github.com/yourusername/betslip/internal/models"
	"github.com/yourusername/betslip/internal/repository"
	"github.com/yourusername/betslip/internal/slip"
)

// Manager creates and tracks sessions. All sessions read the same match book;
// each owns its own slip engine.
type Manager struct {
	book     *feed.MatchBook
	wagering slip.Submitter
	receipts repository.ReceiptRepository // nil when the archive is disabled
	audit    *logger.AuditLogger
	logger   *logrus.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a session manager
func NewManager(
	book *feed.MatchBook,
	wagering slip.Submitter,
	receipts repository.ReceiptRepository,
	audit *logger.AuditLogger,
	log *logrus.Logger,
) *Manager {
	return &Manager{
		book:     book,
		wagering: wagering,
		receipts: receipts,
		audit:    audit,
		logger:   log,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open creates a new anonymous session with an empty slip
func (m *Manager) Open() *Session {
	s := &Session{
		id:       uuid.New(),
		openedAt: time.Now().UTC(),
	}
	s.engine = slip.NewEngine(m.book, m.wagering, s, m.logger)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(m.Count()))
	m.audit.LogSessionOpened(s.id.String())

	return s
}

// Get returns the session with the given ID
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close drops a session and its slip. Slip state is never persisted across a
// session, so there is nothing to save here.
func (m *Manager) Close(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(m.Count()))
	m.audit.LogSessionClosed(id.String())
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Receipts returns the session's archived receipts, newest first. An empty
// list is returned when the archive is disabled.
func (m *Manager) Receipts(ctx context.Context, s *Session) ([]*models.Receipt, error) {
	if m.receipts == nil {
		return []*models.Receipt{}, nil
	}
	return m.receipts.GetBySessionID(ctx, s.ID())
}

// Toggle toggles a selection on the session's slip and records it on the
// audit trail
func (m *Manager) Toggle(s *Session, matchID int64, betType models.BetType) (models.BetSlip, slip.ToggleAction, error) {
	updated, action, err := s.Engine().ToggleSelection(matchID, betType)
	if err != nil {
		return updated, action, err
	}

	id := models.SelectionID(matchID, betType)
	var odds float64
	for _, sel := range updated.Selections {
		if sel.ID == id {
			odds = sel.Odds
			break
		}
	}
	m.audit.LogSelectionToggled(s.ID().String(), id, string(action), odds, updated.PotentialWin)

	return updated, action, nil
}

// Clear empties the session's slip and records it on the audit trail
func (m *Manager) Clear(s *Session) models.BetSlip {
	legs := len(s.Engine().Slip().Selections)
	updated := s.Engine().Clear()
	m.audit.LogSlipCleared(s.ID().String(), legs)
	return updated
}

// Submit submits the session's slip and archives the receipt when the archive
// is enabled. Archive failures are logged, not surfaced: the wager is already
// accepted upstream and the user must see a success.
func (m *Manager) Submit(ctx context.Context, s *Session) (*models.Receipt, error) {
	snapshot := s.Engine().Slip()

	receipt, err := s.Engine().Submit(ctx)
	if err != nil {
		m.audit.LogSubmissionRejected(s.ID().String(), len(snapshot.Selections), snapshot.Stake, err.Error())
		return nil, err
	}

	receipt.SessionID = s.ID()
	m.audit.LogSlipSubmitted(s.ID().String(), receipt.TicketRef, receipt.LegCount(), receipt.Stake, receipt.PotentialWin)

	if m.receipts != nil {
		if archiveErr := m.receipts.Create(ctx, receipt); archiveErr != nil {
			m.logger.WithError(archiveErr).WithField("ticket_ref", receipt.TicketRef).
				Error("Failed to archive receipt")
		}
	}

	return receipt, nil
}
