package database

import (
	"context"
	"fmt"

	"github.com/yourusername/betslip/internal/config"
)

// receiptsSchema creates the receipt archive table. Selections are stored as
// a JSON document: legs are read back whole, never queried individually.
const receiptsSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id UUID PRIMARY KEY,
	ticket_ref TEXT NOT NULL,
	session_id UUID NOT NULL,
	selections JSONB NOT NULL,
	stake NUMERIC(12,2) NOT NULL,
	potential_win NUMERIC(14,2) NOT NULL,
	status TEXT NOT NULL,
	accepted_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_receipts_session_id ON receipts (session_id);
CREATE INDEX IF NOT EXISTS idx_receipts_accepted_at ON receipts (accepted_at);
`

// Initialize creates a connection pool and ensures the receipt archive schema
// exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, receiptsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize receipt schema: %w", err)
	}

	return db, nil
}
