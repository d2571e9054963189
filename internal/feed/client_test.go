package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPClient(t *testing.T) *RateLimitedHTTPClient {
	t.Helper()
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	client := NewRateLimitedHTTPClient(cfg, testLogger())
	t.Cleanup(func() { client.Close() })
	return client
}

const matchListJSON = `[
	{"id": 1, "homeTeam": "Arsenal", "awayTeam": "Chelsea", "league": "Premier League",
	 "odds": {"home": 1.9, "draw": 3.4, "away": 4.1}},
	{"id": 2, "homeTeam": "Barcelona", "awayTeam": "Real Madrid", "league": "La Liga", "isLive": true,
	 "odds": {"home": 2.2, "draw": 3.1, "away": 3.0},
	 "score": {"home": 1, "away": 1}, "time": "34'"}
]`

func TestFetchMatches(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/matches", r.URL.Path)
		atomic.AddInt64(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(matchListJSON))
	}))
	defer server.Close()

	client := NewClient(server.URL, testHTTPClient(t), time.Minute, testLogger())

	matches, err := client.FetchMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Arsenal", matches[0].HomeTeam)
	assert.Equal(t, 1.9, matches[0].Odds.Home)
	assert.True(t, matches[1].IsLive)
	require.NotNil(t, matches[1].Score)
	assert.Equal(t, 1, matches[1].Score.Home)

	// Second fetch inside the TTL is served from cache
	_, err = client.FetchMatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))

	// Invalidation forces the next fetch upstream
	client.Invalidate()
	_, err = client.FetchMatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&hits))
}

func TestFetchMatchesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, testHTTPClient(t), time.Minute, testLogger())

	_, err := client.FetchMatches(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestRefreshBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(matchListJSON))
	}))
	defer server.Close()

	client := NewClient(server.URL, testHTTPClient(t), time.Minute, testLogger())
	book := NewMatchBook(testLogger())

	require.NoError(t, client.RefreshBook(context.Background(), book))
	assert.Equal(t, 2, book.Len())

	m, ok := book.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Barcelona vs Real Madrid", m.Label())
}

func TestPing(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectError bool
	}{
		{name: "healthy", status: http.StatusOK, expectError: false},
		{name: "degraded but reachable", status: http.StatusNotFound, expectError: false},
		{name: "unhealthy", status: http.StatusNotImplemented, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/health", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, testHTTPClient(t), time.Minute, testLogger())
			err := client.Ping(context.Background())
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
