package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/betslip/internal/metrics"
	"github.com/yourusername/betslip/internal/models"
)

const matchListCacheKey = "match_list"

// Client fetches the bettable match list from the match feed REST endpoint.
// Responses are cached for a short TTL so bursty view refreshes collapse into
// a single upstream request.
type Client struct {
	baseURL    string
	httpClient *RateLimitedHTTPClient
	cache      *cache.Cache
	logger     *logrus.Logger
}

// NewClient creates a new match feed client
func NewClient(baseURL string, httpClient *RateLimitedHTTPClient, cacheTTL time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      cache.New(cacheTTL, cacheTTL*2),
		logger:     logger,
	}
}

// FetchMatches returns the current match list, from cache when fresh
func (c *Client) FetchMatches(ctx context.Context) ([]models.Match, error) {
	if cached, found := c.cache.Get(matchListCacheKey); found {
		if matches, ok := cached.([]models.Match); ok {
			return matches, nil
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/api/matches")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("match feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var matches []models.Match
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, fmt.Errorf("failed to decode match list: %w", err)
	}

	metrics.FeedRefreshesTotal.Inc()
	metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())

	c.cache.SetDefault(matchListCacheKey, matches)

	c.logger.WithFields(logrus.Fields{
		"matches":  len(matches),
		"duration": time.Since(start).String(),
	}).Debug("Match list fetched")

	return matches, nil
}

// RefreshBook fetches the match list and swaps it into the book
func (c *Client) RefreshBook(ctx context.Context, book *MatchBook) error {
	matches, err := c.FetchMatches(ctx)
	if err != nil {
		return err
	}

	book.Replace(matches)
	metrics.MatchesInBook.Set(float64(book.Len()))
	return nil
}

// Invalidate drops the cached match list so the next fetch goes upstream
func (c *Client) Invalidate() {
	c.cache.Delete(matchListCacheKey)
}

// Ping verifies feed connectivity, used by the readiness probe
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("match feed unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
