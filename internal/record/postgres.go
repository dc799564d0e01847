package record

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/akozlov/reelcore/internal/domain"
)

// PostgresStore persists records in a game_records table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to Postgres and ensures the schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS game_records (
			id              TEXT PRIMARY KEY,
			account_id      TEXT NOT NULL,
			game_type       TEXT NOT NULL,
			bet_amount      BIGINT NOT NULL,
			win_amount      BIGINT NOT NULL,
			balance_before  BIGINT NOT NULL,
			balance_after   BIGINT NOT NULL,
			free_spin       BOOLEAN NOT NULL,
			jackpot_tier    TEXT,
			rejected        BOOLEAN NOT NULL,
			outcome         JSONB,
			created_at      TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_game_records_account
			ON game_records (account_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate game_records: %w", err)
	}
	return nil
}

// Append inserts one record.
func (s *PostgresStore) Append(ctx context.Context, rec *domain.GameRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_records (id, account_id, game_type, bet_amount, win_amount,
			balance_before, balance_after, free_spin, jackpot_tier, rejected, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, rec.ID, rec.AccountID, rec.GameType, rec.BetAmount, rec.WinAmount,
		rec.BalanceBefore, rec.BalanceAfter, rec.FreeSpin, rec.JackpotTier,
		rec.Rejected, []byte(rec.Outcome), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append game record: %w", err)
	}
	return nil
}

// ListByAccount returns the newest records first.
func (s *PostgresStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.GameRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, game_type, bet_amount, win_amount,
			balance_before, balance_after, free_spin, jackpot_tier, rejected, outcome, created_at
		FROM game_records WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.GameRecord
	for rows.Next() {
		var rec domain.GameRecord
		var tier sql.NullString
		var outcome []byte
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.GameType, &rec.BetAmount, &rec.WinAmount,
			&rec.BalanceBefore, &rec.BalanceAfter, &rec.FreeSpin, &tier,
			&rec.Rejected, &outcome, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.JackpotTier = tier.String
		rec.Outcome = outcome
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
