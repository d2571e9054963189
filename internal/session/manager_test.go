package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/betslip/internal/feed"
	"github.com/yourusername/betslip/internal/logger"
	"github.com/yourusername/betslip/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testBook() *feed.MatchBook {
	book := feed.NewMatchBook(testLogger())
	book.Replace([]models.Match{
		{ID: 1, HomeTeam: "Arsenal", AwayTeam: "Chelsea", Odds: models.Odds{Home: 1.9, Draw: 3.4, Away: 4.1}},
	})
	return book
}

type fakeWagering struct {
	err error
}

func (w *fakeWagering) PlaceSlip(ctx context.Context, slip models.BetSlip) (*models.Receipt, error) {
	if w.err != nil {
		return nil, w.err
	}
	return &models.Receipt{
		ID:           uuid.New(),
		TicketRef:    "TKT-9",
		Selections:   slip.Selections,
		Stake:        slip.Stake,
		PotentialWin: slip.PotentialWin,
		Status:       models.ReceiptStatusAccepted,
		AcceptedAt:   time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// fakeReceiptRepo records archived receipts in memory
type fakeReceiptRepo struct {
	mu       sync.Mutex
	err      error
	archived []*models.Receipt
}

func (r *fakeReceiptRepo) Create(ctx context.Context, receipt *models.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.archived = append(r.archived, receipt)
	return nil
}

func (r *fakeReceiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	return nil, models.ErrNotFound
}

func (r *fakeReceiptRepo) GetBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	found := make([]*models.Receipt, 0)
	for _, receipt := range r.archived {
		if receipt.SessionID == sessionID {
			found = append(found, receipt)
		}
	}
	return found, nil
}

func (r *fakeReceiptRepo) GetOpen(ctx context.Context) ([]*models.Receipt, error) {
	return nil, nil
}

func (r *fakeReceiptRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Receipt, error) {
	return nil, nil
}

func (r *fakeReceiptRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReceiptStatus) error {
	return nil
}

func newTestManager(wagering *fakeWagering, receipts *fakeReceiptRepo) *Manager {
	log := testLogger()
	audit := logger.NewAuditLogger(log)
	if receipts == nil {
		return NewManager(testBook(), wagering, nil, audit, log)
	}
	return NewManager(testBook(), wagering, receipts, audit, log)
}

func TestOpenGetClose(t *testing.T) {
	manager := newTestManager(&fakeWagering{}, nil)

	s := manager.Open()
	require.NotNil(t, s)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 1, manager.Count())

	got, ok := manager.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)

	manager.Close(s.ID())
	assert.Equal(t, 0, manager.Count())
	_, ok = manager.Get(s.ID())
	assert.False(t, ok)
}

func TestSessionsIsolateSlips(t *testing.T) {
	manager := newTestManager(&fakeWagering{}, nil)

	a := manager.Open()
	b := manager.Open()

	_, _, err := a.Engine().ToggleSelection(1, models.BetTypeHome)
	require.NoError(t, err)

	assert.Len(t, a.Engine().Slip().Selections, 1)
	assert.Empty(t, b.Engine().Slip().Selections)
}

func TestAuthenticateAndLogout(t *testing.T) {
	manager := newTestManager(&fakeWagering{}, nil)
	s := manager.Open()

	s.Authenticate("user-123")
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "user-123", s.UserRef())

	s.Logout()
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, "", s.UserRef())
}

func TestSubmitArchivesReceipt(t *testing.T) {
	repo := &fakeReceiptRepo{}
	manager := newTestManager(&fakeWagering{}, repo)

	s := manager.Open()
	s.Authenticate("user-123")
	_, _, err := s.Engine().ToggleSelection(1, models.BetTypeHome)
	require.NoError(t, err)

	receipt, err := manager.Submit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, s.ID(), receipt.SessionID)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.archived, 1)
	assert.Equal(t, "TKT-9", repo.archived[0].TicketRef)
}

func TestReceiptsReturnsOwnSessionsReceipts(t *testing.T) {
	repo := &fakeReceiptRepo{}
	manager := newTestManager(&fakeWagering{}, repo)

	s := manager.Open()
	s.Authenticate("user-123")
	_, _, err := s.Engine().ToggleSelection(1, models.BetTypeHome)
	require.NoError(t, err)
	_, err = manager.Submit(context.Background(), s)
	require.NoError(t, err)

	other := manager.Open()
	other.Authenticate("user-456")
	_, _, err = other.Engine().ToggleSelection(1, models.BetTypeDraw)
	require.NoError(t, err)
	_, err = manager.Submit(context.Background(), other)
	require.NoError(t, err)

	receipts, err := manager.Receipts(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, s.ID(), receipts[0].SessionID)
}

func TestReceiptsEmptyWhenArchiveDisabled(t *testing.T) {
	manager := newTestManager(&fakeWagering{}, nil)
	s := manager.Open()

	receipts, err := manager.Receipts(context.Background(), s)
	require.NoError(t, err)
	assert.NotNil(t, receipts)
	assert.Empty(t, receipts)
}

func TestSubmitSucceedsWhenArchiveFails(t *testing.T) {
	repo := &fakeReceiptRepo{err: errors.New("connection refused")}
	manager := newTestManager(&fakeWagering{}, repo)

	s := manager.Open()
	s.Authenticate("user-123")
	_, _, err := s.Engine().ToggleSelection(1, models.BetTypeHome)
	require.NoError(t, err)

	receipt, err := manager.Submit(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Empty(t, s.Engine().Slip().Selections)
}

func TestSubmitAnonymousSessionRejected(t *testing.T) {
	manager := newTestManager(&fakeWagering{}, nil)

	s := manager.Open()
	_, _, err := s.Engine().ToggleSelection(1, models.BetTypeHome)
	require.NoError(t, err)

	_, err = manager.Submit(context.Background(), s)
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
	assert.Len(t, s.Engine().Slip().Selections, 1)
}

func TestManagerToggleAndClear(t *testing.T) {
	manager := newTestManager(&fakeWagering{}, nil)
	s := manager.Open()

	slip, action, err := manager.Toggle(s, 1, models.BetTypeHome)
	require.NoError(t, err)
	assert.Equal(t, "added", string(action))
	require.Len(t, slip.Selections, 1)

	slip = manager.Clear(s)
	assert.Empty(t, slip.Selections)
	assert.Equal(t, models.DefaultStake, slip.Stake)

	_, _, err = manager.Toggle(s, 1, models.BetType("banker"))
	assert.ErrorIs(t, err, models.ErrInvalidBetType)
}

func TestSubmitWageringFailureSurfaces(t *testing.T) {
	manager := newTestManager(&fakeWagering{err: errors.New("stale odds")}, nil)

	s := manager.Open()
	s.Authenticate("user-123")
	_, _, err := s.Engine().ToggleSelection(1, models.BetTypeHome)
	require.NoError(t, err)

	_, err = manager.Submit(context.Background(), s)
	require.Error(t, err)
	assert.Len(t, s.Engine().Slip().Selections, 1)
}
