// Package api exposes the session and slip operations over HTTP. It is a thin
// adapter: every handler parses the request, calls into the session manager or
// slip engine, and encodes the result. No betting logic lives here.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/betslip/internal/feed"
	"github.com/yourusername/betslip/internal/models"
	"github.com/yourusername/betslip/internal/session"
	"github.com/yourusername/betslip/internal/wagering"
)

// Server serves the slip API
type Server struct {
	sessions *session.Manager
	book     *feed.MatchBook
	logger   *logrus.Logger
	server   *http.Server
}

// NewServer creates a new API server
func NewServer(port int, sessions *session.Manager, book *feed.MatchBook, logger *logrus.Logger) *Server {
	s := &Server{
		sessions: sessions,
		book:     book,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/matches", s.handleMatches)
	mux.HandleFunc("POST /api/sessions", s.handleOpenSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleCloseSession)
	mux.HandleFunc("POST /api/sessions/{id}/login", s.handleLogin)
	mux.HandleFunc("POST /api/sessions/{id}/logout", s.handleLogout)
	mux.HandleFunc("GET /api/sessions/{id}/slip", s.handleGetSlip)
	mux.HandleFunc("POST /api/sessions/{id}/toggle", s.handleToggle)
	mux.HandleFunc("DELETE /api/sessions/{id}/selections/{selectionId}", s.handleRemoveSelection)
	mux.HandleFunc("PUT /api/sessions/{id}/stake", s.handleSetStake)
	mux.HandleFunc("POST /api/sessions/{id}/clear", s.handleClear)
	mux.HandleFunc("POST /api/sessions/{id}/submit", s.handleSubmit)
	mux.HandleFunc("GET /api/sessions/{id}/receipts", s.handleReceipts)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the API server in the background
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.logger.WithField("addr", s.server.Addr).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()
}

// errorResponse is the JSON shape of API failures
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// slipResponse wraps a slip snapshot with its lifecycle state
type slipResponse struct {
	Slip   models.BetSlip   `json:"slip"`
	State  models.SlipState `json:"state"`
	Action string           `json:"action,omitempty"`
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.book.Snapshot())
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Open()
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": sess.ID().String()})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.sessions.Close(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var body struct {
		UserRef string `json:"userRef"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserRef == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "userRef is required")
		return
	}

	sess.Authenticate(body.UserRef)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSlip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, slipResponse{
		Slip:  sess.Engine().Slip(),
		State: sess.Engine().State(),
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var body struct {
		MatchID int64  `json:"matchId"`
		BetType string `json:"betType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	updated, action, err := s.sessions.Toggle(sess, body.MatchID, models.BetType(body.BetType))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slipResponse{
		Slip:   updated,
		State:  sess.Engine().State(),
		Action: string(action),
	})
}

func (s *Server) handleRemoveSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	updated := sess.Engine().RemoveSelection(r.PathValue("selectionId"))
	writeJSON(w, http.StatusOK, slipResponse{Slip: updated, State: sess.Engine().State()})
}

func (s *Server) handleSetStake(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	updated := sess.Engine().SetStake(body.Amount)
	writeJSON(w, http.StatusOK, slipResponse{Slip: updated, State: sess.Engine().State()})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	updated := s.sessions.Clear(sess)
	writeJSON(w, http.StatusOK, slipResponse{Slip: updated, State: sess.Engine().State()})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	receipt, err := s.sessions.Submit(r.Context(), sess)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	receipts, err := s.sessions.Receipts(r.Context(), sess)
	if err != nil {
		s.logger.WithError(err).Error("Failed to read receipt archive")
		writeError(w, http.StatusInternalServerError, "ARCHIVE_ERROR", "failed to read receipts")
		return
	}

	writeJSON(w, http.StatusOK, receipts)
}

// session resolves the {id} path segment to an active session
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid session id")
		return nil, false
	}

	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found")
		return nil, false
	}
	return sess, true
}

// writeEngineError maps engine and wagering errors to HTTP responses
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidBetType):
		writeError(w, http.StatusBadRequest, "INVALID_BET_TYPE", err.Error())
	case errors.Is(err, models.ErrUnknownOdds):
		writeError(w, http.StatusUnprocessableEntity, "UNKNOWN_ODDS", err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "MATCH_NOT_FOUND", err.Error())
	case errors.Is(err, models.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", err.Error())
	case errors.Is(err, models.ErrEmptySlip):
		writeError(w, http.StatusUnprocessableEntity, "EMPTY_SLIP", err.Error())
	case errors.Is(err, models.ErrInvalidStake):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_STAKE", err.Error())
	case errors.Is(err, models.ErrSubmissionInProgress):
		writeError(w, http.StatusConflict, "SUBMISSION_IN_PROGRESS", err.Error())
	default:
		var apiErr *wagering.APIError
		if errors.As(err, &apiErr) {
			writeError(w, http.StatusBadGateway, apiErr.ErrorCode, apiErr.Message)
			return
		}
		s.logger.WithError(err).Error("Unhandled API error")
		writeError(w, http.StatusBadGateway, "WAGERING_REJECTED", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
