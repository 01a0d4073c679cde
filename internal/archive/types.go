// Package archive persists redacted conversation transcripts for audit.
// Session state itself stays in memory; the archive is best-effort and a
// write failure never fails the user-facing turn.
package archive

import (
	"context"
	"time"
)

// TurnRecord stores a single user or assistant turn.
type TurnRecord struct {
	ID            string    `json:"id"`
	CallerID      string    `json:"caller_id"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	Authenticated bool      `json:"authenticated"`
	Redacted      bool      `json:"redacted"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store persists and retrieves transcript turns.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	RecentTurns(ctx context.Context, callerID string, limit int) ([]TurnRecord, error)
	Close() error
}
