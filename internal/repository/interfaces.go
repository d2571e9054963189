// Package repository provides data access for the receipt archive.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/betslip/internal/models"
)

// ReceiptRepository defines the interface for receipt archive access
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error)
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.Receipt, error)
	GetOpen(ctx context.Context) ([]*models.Receipt, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Receipt, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReceiptStatus) error
}
