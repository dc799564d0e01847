package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/akozlov/reelcore/internal/domain"
)

// BadgerStore persists records in an embedded Badger database. Keys are
// rec/<account>/<timestamp-nanos>/<id>, so a prefix scan in reverse
// yields an account's records newest first.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func recordKey(rec *domain.GameRecord) []byte {
	return []byte(fmt.Sprintf("rec/%s/%020d/%s", rec.AccountID, rec.CreatedAt.UnixNano(), rec.ID))
}

// Append writes one record.
func (s *BadgerStore) Append(_ context.Context, rec *domain.GameRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec), data)
	})
}

// ListByAccount scans the account prefix in reverse key order.
func (s *BadgerStore) ListByAccount(_ context.Context, accountID string, limit int) ([]*domain.GameRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	prefix := []byte(fmt.Sprintf("rec/%s/", accountID))
	var out []*domain.GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts past the prefix range.
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec domain.GameRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("failed to decode record: %w", err)
				}
				out = append(out, &rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
