package wagering

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Error codes returned by the wagering endpoint
const (
	ErrorCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrorCodeStaleOdds           = "STALE_ODDS"
	ErrorCodeSlipLimitExceeded   = "SLIP_LIMIT_EXCEEDED"
	ErrorCodeMatchClosed         = "MATCH_CLOSED"
	ErrorCodeInvalidSession      = "INVALID_SESSION"
)

// APIError represents an opaque error from the wagering endpoint
type APIError struct {
	Message   string
	ErrorCode string
	Cause     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wagering API error: %s (code: %s)", e.Message, e.ErrorCode)
}

// InsufficientBalanceError represents insufficient wallet funds
type InsufficientBalanceError struct {
	Message string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: %s", e.Message)
}

// StaleOddsError reports that a selection's snapshotted odds no longer match
// the endpoint's current price
type StaleOddsError struct {
	SelectionID string
	Message     string
}

func (e *StaleOddsError) Error() string {
	return fmt.Sprintf("stale odds [%s]: %s", e.SelectionID, e.Message)
}

// SlipLimitError represents a rejected slip size or stake limit
type SlipLimitError struct {
	Message string
}

func (e *SlipLimitError) Error() string {
	return fmt.Sprintf("slip limit exceeded: %s", e.Message)
}

// MatchClosedError reports that a leg's match is no longer open for betting
type MatchClosedError struct {
	SelectionID string
	Message     string
}

func (e *MatchClosedError) Error() string {
	return fmt.Sprintf("match closed [%s]: %s", e.SelectionID, e.Message)
}

// MapError maps wagering endpoint error codes to specific error types
func MapError(errorCode, message, selectionID string, logger *logrus.Logger) error {
	if logger != nil {
		logger.WithFields(logrus.Fields{
			"error_code": errorCode,
			"message":    message,
		}).Debug("Wagering endpoint rejection")
	}

	switch errorCode {
	case ErrorCodeInsufficientBalance:
		return &InsufficientBalanceError{Message: message}
	case ErrorCodeStaleOdds:
		return &StaleOddsError{SelectionID: selectionID, Message: message}
	case ErrorCodeSlipLimitExceeded:
		return &SlipLimitError{Message: message}
	case ErrorCodeMatchClosed:
		return &MatchClosedError{SelectionID: selectionID, Message: message}
	default:
		return &APIError{Message: message, ErrorCode: errorCode}
	}
}
