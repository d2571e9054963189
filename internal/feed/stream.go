package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/betslip/internal/metrics"
	"github.com/yourusername/betslip/internal/models"
)

// MessageTypeLiveScore is the only frame type the stream currently carries
const MessageTypeLiveScore = "liveScore"

// StreamMessage is a frame pushed by the live update channel
type StreamMessage struct {
	Type    string              `json:"type"`
	Matches []models.LiveUpdate `json:"matches,omitempty"`
}

// UpdateHandler is called once per match delta decoded from the stream.
// The engine's ApplyLiveUpdate is the intended handler; the stream itself
// never touches slip or book state.
type UpdateHandler func(update models.LiveUpdate)

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// StreamClient maintains the WebSocket connection to the live update channel.
// It decodes liveScore frames and fans each match delta out to the registered
// handlers; transport concerns stay here so the engine remains testable
// without a live connection.
type StreamClient struct {
	streamURL       string
	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	handlers        []UpdateHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *logrus.Logger
}

// NewStreamClient creates a new stream client
func NewStreamClient(streamURL string, logger *logrus.Logger) *StreamClient {
	return &StreamClient{
		streamURL:       streamURL,
		handlers:        make([]UpdateHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// AddHandler registers an update handler. Handlers must be registered before
// Run is called.
func (s *StreamClient) AddHandler(handler UpdateHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Connect establishes the WebSocket connection
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.WithField("url", s.streamURL).Info("Connecting to live update stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()
	metrics.StreamConnected.Set(1)

	return nil
}

// Run drives the read loop, reconnecting with exponential backoff after
// transient closes until the context is cancelled or the retry budget is
// spent. The subscription is torn down when the context ends so no
// connection leaks past the consuming view's lifetime.
func (s *StreamClient) Run(ctx context.Context) error {
	backoff := s.reconnectConfig.InitialBackoff
	retries := 0

	for {
		if err := ctx.Err(); err != nil {
			s.Close()
			return err
		}

		if !s.IsConnected() {
			if err := s.Connect(ctx); err != nil {
				retries++
				metrics.StreamReconnectsTotal.Inc()
				if retries > s.reconnectConfig.MaxRetries {
					return fmt.Errorf("stream reconnect budget exhausted: %w", err)
				}

				s.logger.WithError(err).WithFields(logrus.Fields{
					"attempt": retries,
					"backoff": backoff.String(),
				}).Warn("Stream connect failed, backing off")

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}

				backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
				if backoff > s.reconnectConfig.MaxBackoff {
					backoff = s.reconnectConfig.MaxBackoff
				}
				continue
			}
			retries = 0
			backoff = s.reconnectConfig.InitialBackoff
		}

		if err := s.readMessages(ctx); err != nil {
			if ctx.Err() != nil {
				s.Close()
				return ctx.Err()
			}
			s.logger.WithError(err).Warn("Stream read loop ended, reconnecting")
			metrics.StreamReconnectsTotal.Inc()
		}
	}
}

// readMessages reads frames until the connection drops
func (s *StreamClient) readMessages(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.isConnected = false
		if s.conn != nil {
			s.conn.Close()
			s.conn = nil
		}
		s.mu.Unlock()
		metrics.StreamConnected.Set(0)
	}()

	for {
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return fmt.Errorf("connection lost")
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("error reading stream message: %w", err)
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		s.dispatch(raw)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// dispatch decodes a frame and fans its match deltas out to the handlers.
// Unknown frame types are ignored.
func (s *StreamClient) dispatch(raw json.RawMessage) {
	var msg StreamMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.WithError(err).Debug("Dropping undecodable stream frame")
		return
	}

	if msg.Type != MessageTypeLiveScore {
		return
	}

	s.mu.RLock()
	handlers := s.handlers
	s.mu.RUnlock()

	for _, update := range msg.Matches {
		for _, handler := range handlers {
			handler(update)
		}
	}
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.isConnected = false
	metrics.StreamConnected.Set(0)
	err := s.conn.Close()
	s.conn = nil
	return err
}
