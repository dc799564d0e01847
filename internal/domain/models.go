// Package domain contains core domain models shared by the outcome
// engine, the ledger and the record writer.
package domain

import (
	"encoding/json"
	"time"
)

// Game describes a playable game and its bet envelope. Amounts are in
// cents, the smallest currency unit used throughout the system.
type Game struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"` // reel, suits
	MinBet  int64  `json:"min_bet"`
	MaxBet  int64  `json:"max_bet"`
	Enabled bool   `json:"enabled"`
}

// GameRecord is the immutable audit record appended after every resolved
// bet, successful or rejected. It is write-once and never mutated.
type GameRecord struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	GameType      string          `json:"game_type"`
	BetAmount     int64           `json:"bet_amount"`
	WinAmount     int64           `json:"win_amount"`
	BalanceBefore int64           `json:"balance_before"`
	BalanceAfter  int64           `json:"balance_after"`
	FreeSpin      bool            `json:"free_spin"`
	JackpotTier   string          `json:"jackpot_tier,omitempty"`
	Rejected      bool            `json:"rejected"`
	Outcome       json.RawMessage `json:"outcome,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// EventSeverity classifies significant events for the audit trail.
type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityError    EventSeverity = "error"
	SeverityCritical EventSeverity = "critical"
)

// Account is a registered player account. The balance itself lives in the
// ledger, never here.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
