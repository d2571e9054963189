package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
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
	"github.com/yourusername/betslip/internal/repository"
	"github.com/yourusername/betslip/internal/session"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
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
		TicketRef:    "TKT-API-1",
		Selections:   slip.Selections,
		Stake:        slip.Stake,
		PotentialWin: slip.PotentialWin,
		Status:       models.ReceiptStatusAccepted,
		AcceptedAt:   time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// memoryReceiptRepo archives receipts in memory for endpoint tests
type memoryReceiptRepo struct {
	mu       sync.Mutex
	err      error
	archived []*models.Receipt
}

func (r *memoryReceiptRepo) Create(ctx context.Context, receipt *models.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archived = append(r.archived, receipt)
	return nil
}

func (r *memoryReceiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	return nil, models.ErrNotFound
}

func (r *memoryReceiptRepo) GetBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.Receipt, error) {
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

func (r *memoryReceiptRepo) GetOpen(ctx context.Context) ([]*models.Receipt, error) {
	return nil, nil
}

func (r *memoryReceiptRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Receipt, error) {
	return nil, nil
}

func (r *memoryReceiptRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReceiptStatus) error {
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWithArchive(t, nil)
}

func newTestServerWithArchive(t *testing.T, receipts repository.ReceiptRepository) *httptest.Server {
	t.Helper()
	log := testLogger()

	book := feed.NewMatchBook(log)
	book.Replace([]models.Match{
		{ID: 1, HomeTeam: "Arsenal", AwayTeam: "Chelsea", Odds: models.Odds{Home: 1.9, Draw: 3.4, Away: 4.1}},
		{ID: 2, HomeTeam: "Barcelona", AwayTeam: "Real Madrid", Odds: models.Odds{Home: 2.2, Draw: 3.1, Away: 3.0}},
	})

	sessions := session.NewManager(book, &fakeWagering{}, receipts, logger.NewAuditLogger(log), log)
	apiServer := NewServer(0, sessions, book, log)

	server := httptest.NewServer(apiServer.server.Handler)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func openSession(t *testing.T, server *httptest.Server) string {
	t.Helper()
	resp, data := doJSON(t, http.MethodPost, server.URL+"/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal(data, &body))
	require.NotEmpty(t, body["sessionId"])
	return body["sessionId"]
}

func TestMatchesEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, data := doJSON(t, http.MethodGet, server.URL+"/api/matches", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var matches []models.Match
	require.NoError(t, json.Unmarshal(data, &matches))
	require.Len(t, matches, 2)
	assert.Equal(t, "Arsenal", matches[0].HomeTeam)
}

func TestSlipLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)
	id := openSession(t, server)
	base := fmt.Sprintf("%s/api/sessions/%s", server.URL, id)

	// Fresh slip
	resp, data := doJSON(t, http.MethodGet, base+"/slip", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var slip slipResponse
	require.NoError(t, json.Unmarshal(data, &slip))
	assert.Equal(t, models.SlipStateEmpty, slip.State)
	assert.Equal(t, models.DefaultStake, slip.Slip.Stake)

	// Toggle a selection on
	resp, data = doJSON(t, http.MethodPost, base+"/toggle", map[string]interface{}{
		"matchId": 1, "betType": "home",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &slip))
	assert.Equal(t, "added", slip.Action)
	require.Len(t, slip.Slip.Selections, 1)
	assert.Equal(t, 190.00, slip.Slip.PotentialWin)

	// Change the stake
	resp, data = doJSON(t, http.MethodPut, base+"/stake", map[string]interface{}{"amount": 50})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &slip))
	assert.Equal(t, 95.00, slip.Slip.PotentialWin)

	// Submitting anonymously fails with 401 and keeps the slip
	resp, data = doJSON(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var apiErr errorResponse
	require.NoError(t, json.Unmarshal(data, &apiErr))
	assert.Equal(t, "NOT_AUTHENTICATED", apiErr.Code)

	// Login and submit
	resp, _ = doJSON(t, http.MethodPost, base+"/login", map[string]string{"userRef": "user-1"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, data = doJSON(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var receipt models.Receipt
	require.NoError(t, json.Unmarshal(data, &receipt))
	assert.Equal(t, "TKT-API-1", receipt.TicketRef)
	assert.Equal(t, 1, receipt.LegCount())

	// Slip reset after acceptance
	resp, data = doJSON(t, http.MethodGet, base+"/slip", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &slip))
	assert.Equal(t, models.SlipStateEmpty, slip.State)
	assert.Empty(t, slip.Slip.Selections)
}

func TestToggleValidation(t *testing.T) {
	server := newTestServer(t)
	id := openSession(t, server)
	base := fmt.Sprintf("%s/api/sessions/%s", server.URL, id)

	resp, data := doJSON(t, http.MethodPost, base+"/toggle", map[string]interface{}{
		"matchId": 1, "betType": "banker",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var apiErr errorResponse
	require.NoError(t, json.Unmarshal(data, &apiErr))
	assert.Equal(t, "INVALID_BET_TYPE", apiErr.Code)

	resp, data = doJSON(t, http.MethodPost, base+"/toggle", map[string]interface{}{
		"matchId": 999, "betType": "home",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &apiErr))
	assert.Equal(t, "MATCH_NOT_FOUND", apiErr.Code)
}

func TestUnknownSession(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/sessions/"+uuid.NewString()+"/slip", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/sessions/not-a-uuid/slip", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReceiptsEndpoint(t *testing.T) {
	repo := &memoryReceiptRepo{}
	server := newTestServerWithArchive(t, repo)
	id := openSession(t, server)
	base := fmt.Sprintf("%s/api/sessions/%s", server.URL, id)

	// Nothing archived yet
	resp, data := doJSON(t, http.MethodGet, base+"/receipts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var receipts []models.Receipt
	require.NoError(t, json.Unmarshal(data, &receipts))
	assert.Empty(t, receipts)

	// Place a bet, then the receipt shows up
	resp, _ = doJSON(t, http.MethodPost, base+"/login", map[string]string{"userRef": "user-1"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, base+"/toggle", map[string]interface{}{"matchId": 1, "betType": "home"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data = doJSON(t, http.MethodGet, base+"/receipts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &receipts))
	require.Len(t, receipts, 1)
	assert.Equal(t, "TKT-API-1", receipts[0].TicketRef)

	// Receipts belong to the session that placed them
	otherID := openSession(t, server)
	resp, data = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/sessions/%s/receipts", server.URL, otherID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &receipts))
	assert.Empty(t, receipts)
}

func TestReceiptsEndpointArchiveFailure(t *testing.T) {
	repo := &memoryReceiptRepo{err: errors.New("connection refused")}
	server := newTestServerWithArchive(t, repo)
	id := openSession(t, server)

	resp, data := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/sessions/%s/receipts", server.URL, id), nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var apiErr errorResponse
	require.NoError(t, json.Unmarshal(data, &apiErr))
	assert.Equal(t, "ARCHIVE_ERROR", apiErr.Code)
}

func TestCloseSession(t *testing.T) {
	server := newTestServer(t)
	id := openSession(t, server)

	resp, _ := doJSON(t, http.MethodDelete, server.URL+"/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/sessions/"+id+"/slip", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
