// Package wagering provides the client for the external wagering submission
// endpoint. The engine validates slips before any call lands here, so every
// request this client sends is locally well-formed.
package wagering

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/betslip/internal/feed"
	"github.com/yourusername/betslip/internal/models"
)

// Client submits finalized bet slips to the wagering endpoint
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *feed.RateLimitedHTTPClient
	logger     *logrus.Logger
}

// NewClient creates a new wagering client
func NewClient(baseURL, apiKey string, httpClient *feed.RateLimitedHTTPClient, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// placeSlipRequest is the wire shape of a slip submission
type placeSlipRequest struct {
	Selections   []models.BetSelection `json:"selections"`
	Stake        float64               `json:"stake"`
	PotentialWin float64               `json:"potentialWin"`
}

// placeSlipResponse is the endpoint's acceptance payload
type placeSlipResponse struct {
	TicketRef  string    `json:"ticketRef"`
	AcceptedAt time.Time `json:"acceptedAt"`
}

// rejectionResponse is the endpoint's structured failure payload
type rejectionResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	SelectionID string `json:"selectionId,omitempty"`
}

// PlaceSlip submits the slip and returns a receipt on acceptance. Structured
// rejections are mapped to the typed errors in this package; the caller keeps
// the slip intact either way.
func (c *Client) PlaceSlip(ctx context.Context, slip models.BetSlip) (*models.Receipt, error) {
	payload, err := json.Marshal(placeSlipRequest{
		Selections:   slip.Selections,
		Stake:        slip.Stake,
		PotentialWin: slip.PotentialWin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode slip: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/wagers", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("wagering endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var accepted placeSlipResponse
		if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
			return nil, fmt.Errorf("failed to decode acceptance: %w", err)
		}
		if accepted.AcceptedAt.IsZero() {
			accepted.AcceptedAt = time.Now().UTC()
		}

		receipt := &models.Receipt{
			ID:           uuid.New(),
			TicketRef:    accepted.TicketRef,
			Selections:   slip.Selections,
			Stake:        slip.Stake,
			PotentialWin: slip.PotentialWin,
			Status:       models.ReceiptStatusAccepted,
			AcceptedAt:   accepted.AcceptedAt,
			CreatedAt:    time.Now().UTC(),
		}

		c.logger.WithFields(logrus.Fields{
			"ticket_ref": receipt.TicketRef,
			"legs":       receipt.LegCount(),
			"stake":      receipt.Stake,
		}).Info("Slip accepted by wagering endpoint")

		return receipt, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var rejection rejectionResponse
		if err := json.NewDecoder(resp.Body).Decode(&rejection); err != nil {
			return nil, &APIError{
				Message:   fmt.Sprintf("undecodable rejection (status %d)", resp.StatusCode),
				ErrorCode: "UNKNOWN",
				Cause:     err,
			}
		}
		return nil, MapError(rejection.Code, rejection.Message, rejection.SelectionID, c.logger)

	default:
		return nil, &APIError{
			Message:   fmt.Sprintf("unexpected status %d", resp.StatusCode),
			ErrorCode: "UNKNOWN",
		}
	}
}
