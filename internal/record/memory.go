package record

import (
	"context"
	"sync"

	"github.com/akozlov/reelcore/internal/domain"
)

// MemoryStore keeps records in process memory. Used by tests, the RTP
// simulator and deployments that do not need a durable trail.
type MemoryStore struct {
	mu     sync.RWMutex
	byAcct map[string][]*domain.GameRecord
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byAcct: make(map[string][]*domain.GameRecord)}
}

// Append stores a copy of the record so later caller mutations cannot
// reach it.
func (s *MemoryStore) Append(_ context.Context, rec *domain.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	cp := *rec
	s.byAcct[rec.AccountID] = append(s.byAcct[rec.AccountID], &cp)
	return nil
}

// ListByAccount returns the newest records first.
func (s *MemoryStore) ListByAccount(_ context.Context, accountID string, limit int) ([]*domain.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	recs := s.byAcct[accountID]
	if limit <= 0 || limit > len(recs) {
		limit = len(recs)
	}

	out := make([]*domain.GameRecord, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *recs[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Close marks the store closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
