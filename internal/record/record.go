// Package record persists the append-only game record trail. Writes are
// best-effort from the engine's point of view: a failed append is logged
// and never rolls back or blocks a ledger operation.
package record

import (
	"context"
	"errors"

	"github.com/akozlov/reelcore/internal/domain"
)

var ErrClosed = errors.New("record store is closed")

// Store is an append-only game record sink, readable per account for
// audit and reconciliation.
type Store interface {
	// Append writes one immutable record.
	Append(ctx context.Context, rec *domain.GameRecord) error
	// ListByAccount returns the most recent records for an account,
	// newest first, up to limit.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.GameRecord, error)
	Close() error
}
