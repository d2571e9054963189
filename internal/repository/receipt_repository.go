package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/betslip/internal/database"
	"github.com/yourusername/betslip/internal/models"
)

// PostgresReceiptRepository implements ReceiptRepository for PostgreSQL
type PostgresReceiptRepository struct {
	db *database.DB
}

// NewPostgresReceiptRepository creates a new receipt repository
func NewPostgresReceiptRepository(db *database.DB) ReceiptRepository {
	return &PostgresReceiptRepository{db: db}
}

// Create inserts a new receipt
func (r *PostgresReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	selections, err := json.Marshal(receipt.Selections)
	if err != nil {
		return fmt.Errorf("failed to encode selections: %w", err)
	}

	query := `
		INSERT INTO receipts (id, ticket_ref, session_id, selections, stake, potential_win, status, accepted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		receipt.ID, receipt.TicketRef, receipt.SessionID, selections,
		receipt.Stake, receipt.PotentialWin, receipt.Status, receipt.AcceptedAt, receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	return nil
}

// GetByID retrieves a receipt by ID
func (r *PostgresReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	query := `
		SELECT id, ticket_ref, session_id, selections, stake, potential_win, status, accepted_at, created_at
		FROM receipts WHERE id = $1
	`

	receipt, err := scanReceipt(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	return receipt, nil
}

// GetBySessionID retrieves all receipts for a session, newest first
func (r *PostgresReceiptRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.Receipt, error) {
	query := `
		SELECT id, ticket_ref, session_id, selections, stake, potential_win, status, accepted_at, created_at
		FROM receipts WHERE session_id = $1 ORDER BY accepted_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	return collectReceipts(rows)
}

// GetOpen retrieves receipts still awaiting settlement
func (r *PostgresReceiptRepository) GetOpen(ctx context.Context) ([]*models.Receipt, error) {
	query := `
		SELECT id, ticket_ref, session_id, selections, stake, potential_win, status, accepted_at, created_at
		FROM receipts WHERE status = $1 ORDER BY accepted_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, models.ReceiptStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to query open receipts: %w", err)
	}
	defer rows.Close()

	return collectReceipts(rows)
}

// GetByDateRange retrieves receipts accepted within the given range
func (r *PostgresReceiptRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Receipt, error) {
	query := `
		SELECT id, ticket_ref, session_id, selections, stake, potential_win, status, accepted_at, created_at
		FROM receipts WHERE accepted_at >= $1 AND accepted_at < $2 ORDER BY accepted_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts by date range: %w", err)
	}
	defer rows.Close()

	return collectReceipts(rows)
}

// UpdateStatus updates a receipt's settlement status
func (r *PostgresReceiptRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReceiptStatus) error {
	tag, err := r.db.GetPool().Exec(ctx, `UPDATE receipts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update receipt status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// rowScanner matches both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanReceipt scans one receipt row, decoding the selections JSON
func scanReceipt(row rowScanner) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	var selections []byte

	err := row.Scan(
		&receipt.ID, &receipt.TicketRef, &receipt.SessionID, &selections,
		&receipt.Stake, &receipt.PotentialWin, &receipt.Status, &receipt.AcceptedAt, &receipt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(selections, &receipt.Selections); err != nil {
		return nil, fmt.Errorf("failed to decode selections: %w", err)
	}

	return receipt, nil
}

// collectReceipts drains a result set into receipts
func collectReceipts(rows pgx.Rows) ([]*models.Receipt, error) {
	receipts := make([]*models.Receipt, 0)
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading receipt rows: %w", err)
	}
	return receipts, nil
}
