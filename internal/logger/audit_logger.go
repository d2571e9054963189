// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for slip activity.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogSessionOpened logs a session open event.
func (al *AuditLogger) LogSessionOpened(sessionID string) {
	al.WithField("session_id", sessionID).Info("Session opened")
}

// LogSessionClosed logs a session close event.
func (al *AuditLogger) LogSessionClosed(sessionID string) {
	al.WithField("session_id", sessionID).Info("Session closed")
}

// LogSelectionToggled logs a selection toggle.
func (al *AuditLogger) LogSelectionToggled(sessionID, selectionID, action string, odds, potentialWin float64) {
	al.WithFields(logrus.Fields{
		"session_id":    sessionID,
		"selection_id":  selectionID,
		"action":        action,
		"odds":          odds,
		"potential_win": potentialWin,
	}).Info("Selection toggled")
}

// LogSlipSubmitted logs an accepted slip submission.
func (al *AuditLogger) LogSlipSubmitted(sessionID, ticketRef string, legs int, stake, potentialWin float64) {
	al.WithFields(logrus.Fields{
		"session_id":    sessionID,
		"ticket_ref":    ticketRef,
		"legs":          legs,
		"stake":         stake,
		"potential_win": potentialWin,
	}).Info("Slip submitted")
}

// LogSubmissionRejected logs a rejected slip submission.
func (al *AuditLogger) LogSubmissionRejected(sessionID string, legs int, stake float64, reason string) {
	al.WithFields(logrus.Fields{
		"session_id": sessionID,
		"legs":       legs,
		"stake":      stake,
		"reason":     reason,
	}).Warn("Slip submission rejected")
}

// LogSlipCleared logs a slip clear.
func (al *AuditLogger) LogSlipCleared(sessionID string, legs int) {
	al.WithFields(logrus.Fields{
		"session_id": sessionID,
		"legs":       legs,
	}).Info("Slip cleared")
}
