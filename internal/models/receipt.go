package models

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptStatus represents the settlement status of an accepted slip
type ReceiptStatus string

const (
	ReceiptStatusAccepted ReceiptStatus = "accepted"
	ReceiptStatusSettled  ReceiptStatus = "settled"
	ReceiptStatusVoided   ReceiptStatus = "voided"
)

// Receipt is the wagering endpoint's confirmation of an accepted bet slip.
// The slip itself is session-local and never persisted; receipts for accepted
// wagers are archived for audit and history.
type Receipt struct {
	ID           uuid.UUID      `db:"id" json:"id" validate:"required"`
	TicketRef    string         `db:"ticket_ref" json:"ticketRef" validate:"required"` // wagering endpoint ticket reference
	SessionID    uuid.UUID      `db:"session_id" json:"sessionId"`
	Selections   []BetSelection `db:"-" json:"selections" validate:"required,min=1,dive"`
	Stake        float64        `db:"stake" json:"stake" validate:"gt=0"`
	PotentialWin float64        `db:"potential_win" json:"potentialWin" validate:"gte=0"`
	Status       ReceiptStatus  `db:"status" json:"status" validate:"required"`
	AcceptedAt   time.Time      `db:"accepted_at" json:"acceptedAt" validate:"required"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
}

// LegCount returns the number of legs covered by the receipt
func (r *Receipt) LegCount() int {
	return len(r.Selections)
}

// IsOpen reports whether the wager is still awaiting settlement
func (r *Receipt) IsOpen() bool {
	return r.Status == ReceiptStatusAccepted
}
